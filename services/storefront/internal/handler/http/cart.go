package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// CartData is the cart page model.
type CartData struct {
	View         *service.CartView
	Failed       bool
	SelectedIDs  []domain.ID
	Confirm      bool
	ConfirmText  string
	CancelURL    string
	SelectedText string
}

// CartHandler serves the cart page and its actions.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler creates a cart handler.
func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// selectionFrom reads the checked rows. sel=1 marks an explicit selection,
// which may be empty.
func selectionFrom(v url.Values) service.Selection {
	if v.Get("sel") != "1" {
		return service.Selection{}
	}
	return service.Selection{Explicit: true, IDs: formIDs(v["selected"])}
}

// cartURL builds /cart carrying an explicit selection.
func cartURL(ids []domain.ID, extra url.Values) string {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	v.Set("sel", "1")
	setIDs(v, "selected", ids)
	return withQuery("/cart", v)
}

func without(ids []domain.ID, drop ...domain.ID) []domain.ID {
	out := make([]domain.ID, 0, len(ids))
	for _, id := range ids {
		keep := true
		for _, d := range drop {
			if id == d {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, id)
		}
	}
	return out
}

// Show handles GET /cart. confirm=delete opens the bulk delete dialog.
func (h *CartHandler) Show(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	v := r.URL.Query()

	cv, err := h.cart.Load(ctx, ac.Conn(), selectionFrom(v))
	data := CartData{}
	if err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("cart load failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal memuat keranjang")
		data.Failed = true
		cv = service.BuildCartView(nil, service.Selection{})
	}
	data.View = cv
	data.SelectedIDs = cv.SelectedIDs()
	data.SelectedText = fmt.Sprintf("(%d barang dipilih)", cv.Checked)

	if v.Get("confirm") == "delete" && cv.AnySelected() {
		data.Confirm = true
		data.ConfirmText = fmt.Sprintf("Hapus %d item dari keranjang?", cv.Checked)
		data.CancelURL = cartURL(data.SelectedIDs, nil)
	}

	ac.Render(w, r, http.StatusOK, view.PageCart, "Keranjang", data)
}

// Quantity handles POST /cart/items/{id}/quantity.
func (h *CartHandler) Quantity(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	selected := formIDs(r.PostForm["selected"])

	current := atoiDefault(r.PostFormValue("quantity"), 1)
	delta := atoiDefault(r.PostFormValue("delta"), 0)

	if err := h.cart.Step(ctx, ac.Conn(), id, current, delta); err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("update quantity failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		ac.Flash(ctx, domain.FlashError, "Gagal mengubah jumlah barang")
	}
	ac.Redirect(w, r, cartURL(selected, nil))
}

// Remove handles POST /cart/items/{id}/remove.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	selected := without(formIDs(r.PostForm["selected"]), domain.ID(id))

	if err := h.cart.Remove(ctx, ac.Conn(), id); err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("remove item failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		ac.Flash(ctx, domain.FlashError, "Gagal menghapus item")
		ac.Redirect(w, r, cartURL(selected, nil))
		return
	}

	ac.Track(ctx, activity.CartItemsRemoved, activity.ItemsRemoved{ProductIDs: []string{id}})
	ac.Flash(ctx, domain.FlashSuccess, "Item dihapus")
	ac.Redirect(w, r, cartURL(selected, nil))
}

// Selection handles POST /cart/selection: re-rendering with new checkboxes,
// select all / none, opening the delete dialog and starting checkout.
func (h *CartHandler) Selection(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	selected := formIDs(r.PostForm["selected"])

	switch r.PostFormValue("action") {
	case "all":
		ac.Redirect(w, r, cartURL(formIDs(r.PostForm["row"]), nil))
	case "none":
		ac.Redirect(w, r, cartURL(nil, nil))
	case "delete":
		if len(selected) == 0 {
			ac.Redirect(w, r, cartURL(nil, nil))
			return
		}
		ac.Redirect(w, r, cartURL(selected, url.Values{"confirm": {"delete"}}))
	case "checkout":
		err := h.cart.StashForCheckout(ctx, ac.VisitorID(), selected)
		switch {
		case err == nil:
			ac.Redirect(w, r, "/checkout")
		case errors.Is(err, service.ErrNothingSelected):
			ac.Redirect(w, r, cartURL(nil, nil))
		default:
			logger.FromContext(ctx).Warn("stash checkout selection failed", slog.String("error", err.Error()))
			ac.Flash(ctx, domain.FlashError, "Gagal memproses checkout")
			ac.Redirect(w, r, cartURL(selected, nil))
		}
	default:
		ac.Redirect(w, r, cartURL(selected, nil))
	}
}

// DeleteSelected handles POST /cart/delete, the confirmed bulk delete.
// Rows are deleted one by one; a failure is reported and the rest go on.
func (h *CartHandler) DeleteSelected(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	selected := formIDs(r.PostForm["selected"])
	if len(selected) == 0 {
		ac.Redirect(w, r, cartURL(nil, nil))
		return
	}

	res := h.cart.RemoveMany(ctx, ac.Conn(), selected)
	if res.Removed > 0 {
		ac.Track(ctx, activity.CartItemsRemoved, activity.ItemsRemoved{
			ProductIDs: idStrings(without(selected, res.Failed...)),
			Failed:     idStrings(res.Failed),
		})
	}
	for _, id := range res.Failed {
		ac.Flash(ctx, domain.FlashError, fmt.Sprintf("Gagal menghapus item %s", id))
	}
	ac.Flash(ctx, domain.FlashSuccess, fmt.Sprintf("%d item dihapus dari keranjang", res.Removed))
	ac.Redirect(w, r, cartURL(res.Failed, nil))
}
