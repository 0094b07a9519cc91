package validator

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name so messages line up with inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with user-facing messages.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s %s", err.Field(), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of form field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	return fields
}

// Messages in Indonesian; they are shown next to form inputs.
func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "email":
		return "harus berupa alamat email yang valid"
	case "min":
		return fmt.Sprintf("minimal %s karakter", fe.Param())
	case "max":
		return fmt.Sprintf("maksimal %s karakter", fe.Param())
	case "gte":
		return fmt.Sprintf("harus lebih besar atau sama dengan %s", fe.Param())
	case "lte":
		return fmt.Sprintf("harus lebih kecil atau sama dengan %s", fe.Param())
	case "numeric":
		return "harus berupa angka"
	case "eqfield":
		return "tidak cocok"
	default:
		return fmt.Sprintf("tidak valid (%s)", fe.Tag())
	}
}

// DecodeForm copies posted form values into the string and bool fields of
// the struct pointed to by dst, matched by their `form` tag, then validates
// it. A bool field is true when the value is "on", "true" or "1".
func DecodeForm(form url.Values, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode form: want pointer to struct, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		value := strings.TrimSpace(form.Get(name))
		switch f.Type.Kind() {
		case reflect.String:
			rv.Field(i).SetString(value)
		case reflect.Bool:
			switch strings.ToLower(value) {
			case "on", "true", "1":
				rv.Field(i).SetBool(true)
			default:
				rv.Field(i).SetBool(false)
			}
		}
	}

	return Validate(dst)
}
