// Package activity publishes what visitors do in the storefront as events,
// for analytics consumers downstream. Tracking never fails a request.
package activity

import (
	"context"
	"log/slog"

	"github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// Source names the storefront on every event.
const Source = "storefront"

// Event types.
const (
	CartItemAdded     = "cart.item_added"
	CartItemsRemoved  = "cart.items_removed"
	CheckoutCompleted = "checkout.completed"
	UserLoggedIn      = "auth.logged_in"
	UserSignedUp      = "auth.signed_up"
)

// Publisher sends an event somewhere. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, event *kafka.Event) error
	Close() error
}

// Tracker records activity. The zero value and a nil *Tracker drop events.
type Tracker struct {
	pub    Publisher
	logger *slog.Logger
}

// New creates a tracker publishing through pub.
func New(pub Publisher, logger *slog.Logger) *Tracker {
	return &Tracker{pub: pub, logger: logger}
}

// Enabled reports whether events go anywhere.
func (t *Tracker) Enabled() bool { return t != nil && t.pub != nil }

// Track publishes an event of type kind keyed by the visitor in ctx.
// Failures are logged and otherwise ignored.
func (t *Tracker) Track(ctx context.Context, kind string, data any) {
	if !t.Enabled() {
		return
	}

	e, err := kafka.NewEvent(kind, logger.VisitorIDFromContext(ctx), Source, data)
	if err != nil {
		t.logger.WarnContext(ctx, "failed to build activity event",
			slog.String("event_type", kind),
			slog.String("error", err.Error()),
		)
		return
	}
	e.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := t.pub.Publish(ctx, e); err != nil {
		t.logger.WarnContext(ctx, "failed to publish activity event",
			slog.String("event_type", kind),
			slog.String("error", err.Error()),
		)
	}
}

// Close flushes and closes the publisher.
func (t *Tracker) Close() error {
	if !t.Enabled() {
		return nil
	}
	return t.pub.Close()
}

// ItemAdded is the payload of CartItemAdded.
type ItemAdded struct {
	ProductID string `json:"product_id"`
}

// ItemsRemoved is the payload of CartItemsRemoved.
type ItemsRemoved struct {
	ProductIDs []string `json:"product_ids"`
	Failed     []string `json:"failed,omitempty"`
}

// CheckoutDone is the payload of CheckoutCompleted. OrderID may be empty
// when the backend did not report one.
type CheckoutDone struct {
	OrderID    string   `json:"order_id,omitempty"`
	AddressID  string   `json:"address_id"`
	ProductIDs []string `json:"product_ids,omitempty"`
}

// UserEvent is the payload of the auth events.
type UserEvent struct {
	UserID string `json:"user_id,omitempty"`
}
