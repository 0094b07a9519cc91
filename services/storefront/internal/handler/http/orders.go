package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// paymentReloadDelay is how long the order page waits before reloading
// itself after a payment redirect.
const paymentReloadDelay = 3

// OrdersData is the orders list page model.
type OrdersData struct {
	Orders []domain.Order
	Search string
	Empty  string
}

// OrderData is the order detail page model.
type OrderData struct {
	OrderID string
	Order   *domain.Order
	Failed  bool
	Message string
}

// OrdersHandler serves the orders list and order detail pages.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// List handles GET /orders?q=.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	data := OrdersData{Search: term}

	orders, err := h.orders.List(ctx, ac.Conn(), ac.OrdersOwner(ctx), term)
	switch {
	case err == nil:
		data.Orders = orders
		if len(orders) == 0 {
			data.Empty = "Tidak ada order ditemukan"
		}
	case ac.Unauthorized(w, r, err):
		return
	default:
		logger.FromContext(ctx).Warn("orders load failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal memuat orders")
		data.Empty = "Gagal memuat orders"
	}

	ac.Render(w, r, http.StatusOK, view.PageOrders, "Pesanan Saya", data)
}

// Detail handles GET /orders/{id}. With from_payment=true the page reloads
// itself once, without the marker, to pick up the settled payment.
func (h *OrdersHandler) Detail(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	data := OrderData{OrderID: id}

	o, err := h.orders.Get(ctx, ac.Conn(), id)
	switch {
	case err == nil:
		data.Order = o
	case ac.Unauthorized(w, r, err):
		return
	default:
		logger.FromContext(ctx).Warn("order load failed",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
		ac.Flash(ctx, domain.FlashError, "Gagal memuat detail pesanan")
		data.Failed = true
		data.Message = "Order dengan ID " + id + " tidak ditemukan"
	}

	var opts []func(*view.Layout)
	if r.URL.Query().Get("from_payment") == "true" {
		opts = append(opts, WithRefresh(paymentReloadDelay, "/orders/"+url.PathEscape(id)))
	}
	ac.Render(w, r, http.StatusOK, view.PageOrder, "Detail Pesanan", data, opts...)
}
