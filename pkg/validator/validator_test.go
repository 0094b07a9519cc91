package validator

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressForm struct {
	Label      string `form:"label" validate:"required"`
	Receiver   string `form:"receiver_name" validate:"required"`
	Phone      string `form:"phone" validate:"required"`
	PostalCode string `form:"postal_code" validate:"required,numeric"`
	IsDefault  bool   `form:"is_default"`
	Ignored    string `form:"-"`
	NoFormTag  string
}

type signupForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"password_confirm" validate:"required,eqfield=Password"`
}

func TestValidate_Success(t *testing.T) {
	f := addressForm{Label: "Rumah", Receiver: "Budi", Phone: "0812", PostalCode: "40115"}
	assert.NoError(t, Validate(f))
}

func TestValidate_MissingRequired_UsesFormNames(t *testing.T) {
	err := Validate(addressForm{Label: "Rumah", PostalCode: "40115"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "wajib diisi", fields["receiver_name"])
	assert.Equal(t, "wajib diisi", fields["phone"])
	assert.NotContains(t, fields, "label")
}

func TestValidate_Messages(t *testing.T) {
	err := Validate(signupForm{Email: "nope", Password: "123", Confirm: "321"})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "harus berupa alamat email yang valid", fields["email"])
	assert.Equal(t, "minimal 6 karakter", fields["password"])
	assert.Equal(t, "tidak cocok", fields["password_confirm"])
	assert.Contains(t, valErr.Error(), "email harus berupa")
}

func TestDecodeForm(t *testing.T) {
	form := url.Values{
		"label":         {"  Kantor "},
		"receiver_name": {"Sari"},
		"phone":         {"0813"},
		"postal_code":   {"12950"},
		"is_default":    {"on"},
		"-":             {"x"},
		"NoFormTag":     {"y"},
	}

	var f addressForm
	require.NoError(t, DecodeForm(form, &f))
	assert.Equal(t, "Kantor", f.Label)
	assert.Equal(t, "Sari", f.Receiver)
	assert.True(t, f.IsDefault)
	assert.Empty(t, f.Ignored)
	assert.Empty(t, f.NoFormTag)
}

func TestDecodeForm_PopulatesEvenWhenInvalid(t *testing.T) {
	var f addressForm
	err := DecodeForm(url.Values{"label": {"Rumah"}, "postal_code": {"abc"}}, &f)
	require.Error(t, err)
	assert.Equal(t, "Rumah", f.Label)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "harus berupa angka", valErr.Fields()["postal_code"])
}

func TestDecodeForm_RejectsNonPointer(t *testing.T) {
	err := DecodeForm(url.Values{}, addressForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pointer to struct")
}
