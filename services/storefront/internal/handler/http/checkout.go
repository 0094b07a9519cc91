package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// AddressOption is one entry of the address selector.
type AddressOption struct {
	ID       domain.ID
	Text     string
	Selected bool
}

// CheckoutData is the checkout page model.
type CheckoutData struct {
	View    *service.CheckoutView
	Failed  bool
	Done    bool
	Options []AddressOption
	Empty   string
	// NoneSelected adds a blank first option so an empty choice submits.
	NoneSelected bool

	ConfirmDelete bool
	DeleteText    string
	DeleteID      domain.ID
	CancelURL     string

	Form       domain.NewAddress
	FormErrors map[string]string
	FormOpen   bool
}

// CheckoutHandler serves the checkout page and its address actions.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// checkoutURL builds /checkout keeping the chosen product ids.
func checkoutURL(ids []domain.ID, extra url.Values) string {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	setIDs(v, "product_id", ids)
	return withQuery("/checkout", v)
}

// Show handles GET /checkout. A visit without product ids consumes the
// cart's stash once and moves the ids into the URL.
func (h *CheckoutHandler) Show(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	v := r.URL.Query()
	ids := formIDs(v["product_id"])

	if len(ids) == 0 && v.Get("done") != "1" {
		if taken := h.checkout.TakeSelection(ctx, ac.VisitorID()); len(taken) > 0 {
			ac.Redirect(w, r, checkoutURL(taken, nil))
			return
		}
	}

	page := checkoutPage{
		ids:      ids,
		selected: domain.ID(v.Get("address_id")),
		done:     v.Get("done") == "1",
		confirm:  v.Get("confirm_delete") == "1",
		cleared:  v.Get("cleared") == "1",
	}
	h.render(w, r, ac, http.StatusOK, page)
}

type checkoutPage struct {
	ids        []domain.ID
	selected   domain.ID
	done       bool
	confirm    bool
	cleared    bool
	form       domain.NewAddress
	formErrors map[string]string
	formOpen   bool
}

func (h *CheckoutHandler) render(w http.ResponseWriter, r *http.Request, ac *AppContext, status int, p checkoutPage) {
	ctx := r.Context()
	data := CheckoutData{
		Done:       p.done,
		Form:       p.form,
		FormErrors: p.formErrors,
		FormOpen:   p.formOpen,
	}

	cv, err := h.checkout.Prepare(ctx, ac.Conn(), p.ids, p.selected, !p.cleared)
	if err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("checkout load failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal memuat keranjang")
		data.Failed = true
		cv = &service.CheckoutView{ProductIDs: p.ids, AddressesFailed: true}
	} else if cv.AddressesFailed {
		ac.Flash(ctx, domain.FlashError, "Gagal memuat alamat")
	}
	data.View = cv

	switch {
	case cv.AddressesFailed:
		data.Empty = "Gagal memuat alamat"
	case cv.NoAddresses():
		data.Empty = "Tidak ada alamat ditemukan. Silakan tambah alamat baru."
	}
	for _, a := range cv.Addresses {
		data.Options = append(data.Options, AddressOption{
			ID:       a.ID,
			Text:     a.OptionText(),
			Selected: a.ID == cv.SelectedAddress,
		})
	}
	data.NoneSelected = len(data.Options) > 0 && cv.SelectedAddress == ""

	if p.confirm {
		if a, ok := cv.Selected(); ok && a.ID == p.selected {
			data.ConfirmDelete = true
			data.DeleteID = a.ID
			data.DeleteText = "Hapus alamat: " + a.OptionText() + "?"
			data.CancelURL = checkoutURL(p.ids, url.Values{"address_id": {a.ID.String()}})
		}
	}

	ac.Render(w, r, status, view.PageCheckout, "Checkout", data)
}

// AddAddress handles POST /checkout/addresses. An invalid form is rendered
// again with the values kept.
func (h *CheckoutHandler) AddAddress(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	ids := formIDs(r.PostForm["product_id"])

	var a domain.NewAddress
	err := validator.DecodeForm(r.PostForm, &a)
	if err == nil {
		err = h.checkout.AddAddress(ctx, ac.Conn(), a)
	}

	var verr *validator.ValidationError
	switch {
	case err == nil:
		ac.Flash(ctx, domain.FlashSuccess, "Alamat berhasil ditambahkan")
		ac.Redirect(w, r, checkoutURL(ids, nil))
	case errors.As(err, &verr):
		ac.Flash(ctx, domain.FlashError, "Gagal menambah alamat")
		h.render(w, r, ac, http.StatusUnprocessableEntity, checkoutPage{
			ids:        ids,
			selected:   domain.ID(r.PostFormValue("address_id")),
			form:       a,
			formErrors: verr.Fields(),
			formOpen:   true,
		})
	case ac.Unauthorized(w, r, err):
	default:
		logger.FromContext(ctx).Warn("add address failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal menambah alamat")
		h.render(w, r, ac, http.StatusOK, checkoutPage{
			ids:      ids,
			selected: domain.ID(r.PostFormValue("address_id")),
			form:     a,
			formOpen: true,
		})
	}
}

// DeleteAddress handles POST /checkout/addresses/delete. Without confirm=1
// it only opens the confirmation dialog. After a delete the page comes back
// with no address selected.
func (h *CheckoutHandler) DeleteAddress(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	ids := formIDs(r.PostForm["product_id"])
	id := domain.ID(r.PostFormValue("address_id"))

	if id == "" {
		ac.Flash(ctx, domain.FlashError, "Silakan pilih alamat yang akan dihapus")
		ac.Redirect(w, r, checkoutURL(ids, nil))
		return
	}
	if r.PostFormValue("confirm") != "1" {
		ac.Redirect(w, r, checkoutURL(ids, url.Values{
			"address_id":     {id.String()},
			"confirm_delete": {"1"},
		}))
		return
	}

	if err := h.checkout.DeleteAddress(ctx, ac.Conn(), id); err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("delete address failed",
			slog.String("address_id", id.String()),
			slog.String("error", err.Error()),
		)
		ac.Flash(ctx, domain.FlashError, "Gagal menghapus alamat")
		ac.Redirect(w, r, checkoutURL(ids, url.Values{"address_id": {id.String()}}))
		return
	}

	ac.Flash(ctx, domain.FlashSuccess, "Alamat berhasil dihapus")
	ac.Redirect(w, r, checkoutURL(ids, url.Values{"cleared": {"1"}}))
}

// Confirm handles POST /checkout.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	ids := formIDs(r.PostForm["product_id"])
	addressID := domain.ID(r.PostFormValue("address_id"))

	res, err := h.checkout.Confirm(ctx, ac.Conn(), ac.OrdersOwner(ctx), addressID, ids)
	if err == nil {
		ac.Track(ctx, activity.CheckoutCompleted, activity.CheckoutDone{
			OrderID:    res.OrderID.String(),
			AddressID:  addressID.String(),
			ProductIDs: idStrings(ids),
		})
	}
	switch {
	case err == nil && res.OrderID != "":
		ac.Redirect(w, r, "/orders/"+url.PathEscape(res.OrderID.String()))
	case err == nil:
		ac.Flash(ctx, domain.FlashSuccess, "Checkout sukses")
		ac.Redirect(w, r, checkoutURL(ids, url.Values{"done": {"1"}}))
	case errors.Is(err, service.ErrNoAddress):
		ac.Flash(ctx, domain.FlashError, "Silakan pilih alamat pengiriman")
		ac.Redirect(w, r, checkoutURL(ids, nil))
	case ac.Unauthorized(w, r, err):
	default:
		logger.FromContext(ctx).Warn("checkout failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Checkout gagal")
		ac.Redirect(w, r, checkoutURL(ids, url.Values{"address_id": {addressID.String()}}))
	}
}
