package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is an integer number of rupiah. It decodes from JSON integers,
// floats (rounded), numeric strings and null (zero).
type Amount int64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	f, err := decodeNumber(b)
	if err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	*a = Amount(math.Round(f))
	return nil
}

// Times returns a multiplied by n.
func (a Amount) Times(n int) Amount { return a * Amount(n) }

// Number is a loosely typed JSON number (rating, discount percent).
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	f, err := decodeNumber(b)
	if err != nil {
		return fmt.Errorf("decode number: %w", err)
	}
	*n = Number(f)
	return nil
}

// String drops a trailing ".0" so whole numbers print as integers.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// ID is a backend identifier that may arrive as a JSON string or number.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(num.String())
	return nil
}

func (id ID) String() string { return string(id) }

func decodeNumber(b []byte) (float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// Product mirrors a catalog entry.
type Product struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       Amount   `json:"price"`
	Discount    Number   `json:"discount"`
	Rating      Number   `json:"rating"`
	SoldCount   int      `json:"sold_count"`
	Images      []string `json:"images"`
}

// UnmarshalJSON applies the listing fallbacks: sold_count from sold and a
// single image when images is empty.
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var raw struct {
		plain
		Sold  Number `json:"sold"`
		Image string `json:"image"`
		Count Number `json:"sold_count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Product(raw.plain)
	p.SoldCount = int(raw.Count)
	if p.SoldCount == 0 {
		p.SoldCount = int(raw.Sold)
	}
	if len(p.Images) == 0 && raw.Image != "" {
		p.Images = []string{raw.Image}
	}
	return nil
}

// Valid reports whether the product carries an id.
func (p Product) Valid() bool { return p.ID != "" }

// CartItem is one line of the backend session cart.
type CartItem struct {
	ProductID ID       `json:"product_id"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Price     Amount   `json:"price"`
	Quantity  int      `json:"quantity"`
	Images    []string `json:"images"`
	Selected  bool     `json:"selected"`
}

// UnmarshalJSON applies the cart fallbacks: product_id from id, name from
// product_name, quantity at least 1.
func (c *CartItem) UnmarshalJSON(b []byte) error {
	type plain CartItem
	var raw struct {
		plain
		ID          ID     `json:"id"`
		ProductName string `json:"product_name"`
		Image       string `json:"image"`
		Quantity    Number `json:"quantity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = CartItem(raw.plain)
	if c.ProductID == "" {
		c.ProductID = raw.ID
	}
	if c.Name == "" {
		c.Name = raw.ProductName
	}
	if len(c.Images) == 0 && raw.Image != "" {
		c.Images = []string{raw.Image}
	}
	c.Quantity = int(raw.Quantity)
	if c.Quantity < 1 {
		c.Quantity = 1
	}
	return nil
}

// Subtotal is price times quantity.
func (c CartItem) Subtotal() Amount { return c.Price.Times(c.Quantity) }

// Address is a saved shipping address.
type Address struct {
	ID           ID     `json:"id"`
	Label        string `json:"label"`
	ReceiverName string `json:"receiver_name"`
	Phone        string `json:"phone"`
	AddressLine  string `json:"address_line"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postal_code"`
	IsDefault    bool   `json:"is_default"`
}

// OptionText is the address as listed in the checkout selector.
func (a Address) OptionText() string {
	text := fmt.Sprintf("%s: %s, %s", a.Label, a.AddressLine, a.City)
	if a.IsDefault {
		text += " (Utama)"
	}
	return text
}

// NewAddress is the payload for creating an address.
type NewAddress struct {
	Label        string `json:"label" form:"label" validate:"required"`
	ReceiverName string `json:"receiver_name" form:"receiver_name" validate:"required"`
	Phone        string `json:"phone" form:"phone" validate:"required"`
	AddressLine  string `json:"address_line" form:"address_line" validate:"required"`
	City         string `json:"city" form:"city" validate:"required"`
	Province     string `json:"province" form:"province" validate:"required"`
	PostalCode   string `json:"postal_code" form:"postal_code" validate:"required"`
	IsDefault    bool   `json:"is_default" form:"is_default"`
}

// OrderItem is a line of a placed order. The backend may embed the product
// under product_id.
type OrderItem struct {
	ProductID   ID     `json:"-"`
	ProductName string `json:"-"`
	Brand       string `json:"-"`
	Image       string `json:"-"`
	Quantity    int    `json:"quantity"`
	Price       Amount `json:"price"`
	Subtotal    Amount `json:"subtotal"`
}

// UnmarshalJSON accepts product_id as either a scalar id or an embedded
// product object.
func (o *OrderItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Product  json.RawMessage `json:"product_id"`
		Name     string          `json:"name"`
		Quantity Number          `json:"quantity"`
		Price    Amount          `json:"price"`
		Subtotal Amount          `json:"subtotal"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*o = OrderItem{
		ProductName: raw.Name,
		Quantity:    int(raw.Quantity),
		Price:       raw.Price,
		Subtotal:    raw.Subtotal,
	}

	trimmed := bytes.TrimSpace(raw.Product)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p struct {
			ID     ID       `json:"id"`
			Name   string   `json:"name"`
			Brand  string   `json:"brand"`
			Images []string `json:"images"`
		}
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return fmt.Errorf("decode order item product: %w", err)
		}
		o.ProductID = p.ID
		if p.Name != "" {
			o.ProductName = p.Name
		}
		o.Brand = p.Brand
		if len(p.Images) > 0 {
			o.Image = p.Images[0]
		}
	} else if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &o.ProductID); err != nil {
			return err
		}
	}

	if o.Subtotal == 0 {
		o.Subtotal = o.Price.Times(o.Quantity)
	}
	return nil
}

// MarshalJSON writes the embedded product form so cached orders decode
// back to the same value.
func (o OrderItem) MarshalJSON() ([]byte, error) {
	type product struct {
		ID     ID       `json:"id"`
		Name   string   `json:"name,omitempty"`
		Brand  string   `json:"brand,omitempty"`
		Images []string `json:"images,omitempty"`
	}
	p := product{ID: o.ProductID, Name: o.ProductName, Brand: o.Brand}
	if o.Image != "" {
		p.Images = []string{o.Image}
	}
	return json.Marshal(struct {
		Product  product `json:"product_id"`
		Quantity int     `json:"quantity"`
		Price    Amount  `json:"price"`
		Subtotal Amount  `json:"subtotal"`
	}{p, o.Quantity, o.Price, o.Subtotal})
}

// Label is "name (qty)", falling back to the product id.
func (o OrderItem) Label() string {
	name := o.ProductName
	if name == "" {
		name = o.ProductID.String()
	}
	return fmt.Sprintf("%s (%d)", name, o.Quantity)
}

// Order is a placed order.
type Order struct {
	OrderID    ID          `json:"order_id"`
	CreatedAt  string      `json:"created_at"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalPrice Amount      `json:"total_price"`
}

// UnmarshalJSON applies the order fallbacks: order_id from id, total_price
// from total, created_at from date.
func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	var raw struct {
		plain
		ID    ID     `json:"id"`
		Total Amount `json:"total"`
		Date  string `json:"date"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*o = Order(raw.plain)
	if o.OrderID == "" {
		o.OrderID = raw.ID
	}
	if o.TotalPrice == 0 {
		o.TotalPrice = raw.Total
	}
	if o.CreatedAt == "" {
		o.CreatedAt = raw.Date
	}
	o.Status = OrderStatus(strings.ToLower(strings.TrimSpace(string(o.Status))))
	return nil
}

// Session is the identity reported by /api/auth/me.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Authenticated reports whether a user id is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Credentials is the login and signup payload.
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// CheckoutRequest is the payload of POST /api/checkout.
type CheckoutRequest struct {
	AddressID  ID   `json:"address_id"`
	ProductIDs []ID `json:"product_ids,omitempty"`
}

// CheckoutResult is what a successful checkout returns. OrderID is empty
// when the backend reply did not carry one.
type CheckoutResult struct {
	OrderID ID
	Total   Amount
}
