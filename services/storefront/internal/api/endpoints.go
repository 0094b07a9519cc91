package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/pagination"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// ListParams selects one page of the product catalog.
type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Brand  string
	Search string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = pagination.DefaultLimit
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	return v
}

// Me returns the current session, or nil when nobody is logged in.
func (c *Conn) Me(ctx context.Context) (*domain.Session, error) {
	body, err := c.do(ctx, call{endpoint: "auth.me", method: http.MethodGet, path: "/api/auth/me"})
	if err != nil {
		return nil, err
	}
	var s domain.Session
	ok, err := decodeOne("auth.me", body, &s)
	if err != nil {
		return nil, err
	}
	if !ok || !s.Authenticated() {
		return nil, nil
	}
	return &s, nil
}

// Login authenticates with email and password. The backend session cookie
// is available from SetCookies afterwards.
func (c *Conn) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	body, err := c.do(ctx, call{endpoint: "auth.login", method: http.MethodPost, path: "/api/auth/login", body: creds})
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if _, err := decodeOne("auth.login", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Signup registers a new account.
func (c *Conn) Signup(ctx context.Context, creds domain.Credentials) error {
	body, err := c.do(ctx, call{endpoint: "auth.signup", method: http.MethodPost, path: "/api/auth/signup", body: creds})
	if err != nil {
		return err
	}
	_, _, err = unwrap("auth.signup", body)
	return err
}

// Logout ends the backend session.
func (c *Conn) Logout(ctx context.Context) error {
	body, err := c.do(ctx, call{endpoint: "auth.logout", method: http.MethodPost, path: "/api/auth/logout"})
	if err != nil {
		return err
	}
	_, _, err = unwrap("auth.logout", body)
	return err
}

// ListProducts fetches one catalog page, optionally filtered by brand.
func (c *Conn) ListProducts(ctx context.Context, p ListParams) (pagination.Page[domain.Product], error) {
	q := p.values()
	if p.Brand != "" {
		q.Set("brand", p.Brand)
	}
	return c.productPage(ctx, "products.list", "/api/products?"+q.Encode(), p.Page)
}

// SearchProducts fetches one page of search results for p.Search.
func (c *Conn) SearchProducts(ctx context.Context, p ListParams) (pagination.Page[domain.Product], error) {
	q := p.values()
	q.Set("q", p.Search)
	return c.productPage(ctx, "products.search", "/api/products/search?"+q.Encode(), p.Page)
}

func (c *Conn) productPage(ctx context.Context, endpoint, path string, number int) (pagination.Page[domain.Product], error) {
	body, err := c.do(ctx, call{endpoint: endpoint, method: http.MethodGet, path: path})
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	items, hasMore, err := decodeList[domain.Product](endpoint, body)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return pagination.Page[domain.Product]{Number: number, Items: items, HasMore: hasMore}, nil
}

// GetProduct fetches one product. A reply without an id is reported as
// not found.
func (c *Conn) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.do(ctx, call{endpoint: "products.get", method: http.MethodGet, path: "/api/products/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	var p domain.Product
	ok, err := decodeOne("products.get", body, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Valid() {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

// GetCart lists the session cart.
func (c *Conn) GetCart(ctx context.Context) ([]domain.CartItem, error) {
	body, err := c.do(ctx, call{endpoint: "cart.get", method: http.MethodGet, path: "/api/cart"})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[domain.CartItem]("cart.get", body)
	return items, err
}

type cartLine struct {
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds quantity units of a product.
func (c *Conn) AddToCart(ctx context.Context, productID string, quantity int) error {
	return c.mutate(ctx, call{
		endpoint: "cart.add",
		method:   http.MethodPost,
		path:     "/api/cart",
		body:     cartLine{ProductID: productID, Quantity: quantity},
	})
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Conn) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	return c.mutate(ctx, call{
		endpoint: "cart.update",
		method:   http.MethodPut,
		path:     "/api/cart/" + url.PathEscape(productID),
		body:     cartLine{Quantity: quantity},
	})
}

// RemoveCartItem deletes a cart line.
func (c *Conn) RemoveCartItem(ctx context.Context, productID string) error {
	return c.mutate(ctx, call{
		endpoint: "cart.remove",
		method:   http.MethodDelete,
		path:     "/api/cart/" + url.PathEscape(productID),
	})
}

// ListAddresses lists the saved shipping addresses.
func (c *Conn) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	body, err := c.do(ctx, call{endpoint: "address.list", method: http.MethodGet, path: "/api/address"})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[domain.Address]("address.list", body)
	return items, err
}

// AddAddress saves a new shipping address.
func (c *Conn) AddAddress(ctx context.Context, a domain.NewAddress) error {
	return c.mutate(ctx, call{endpoint: "address.add", method: http.MethodPost, path: "/api/address", body: a})
}

// DeleteAddress removes a shipping address.
func (c *Conn) DeleteAddress(ctx context.Context, id string) error {
	return c.mutate(ctx, call{
		endpoint: "address.delete",
		method:   http.MethodDelete,
		path:     "/api/address/" + url.PathEscape(id),
	})
}

// Checkout places an order for the cart, or for the given products only.
func (c *Conn) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	body, err := c.do(ctx, call{endpoint: "checkout", method: http.MethodPost, path: "/api/checkout", body: req})
	if err != nil {
		return nil, err
	}
	var reply struct {
		Order json.RawMessage `json:"order"`
		Total domain.Amount   `json:"total"`
	}
	if _, err := decodeOne("checkout", body, &reply); err != nil {
		return nil, err
	}

	res := &domain.CheckoutResult{Total: reply.Total}
	if !isNull(reply.Order) {
		var o domain.Order
		if err := json.Unmarshal(reply.Order, &o); err != nil {
			return nil, apperrors.Malformed("checkout", err)
		}
		res.OrderID = o.OrderID
		if res.Total == 0 {
			res.Total = o.TotalPrice
		}
	}
	return res, nil
}

// ListOrders lists the user's orders.
func (c *Conn) ListOrders(ctx context.Context) ([]domain.Order, error) {
	body, err := c.do(ctx, call{endpoint: "orders.list", method: http.MethodGet, path: "/api/orders"})
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[domain.Order]("orders.list", body)
	return items, err
}

// GetOrder fetches one order.
func (c *Conn) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	body, err := c.do(ctx, call{endpoint: "orders.get", method: http.MethodGet, path: "/api/orders/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	var o domain.Order
	ok, err := decodeOne("orders.get", body, &o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	if o.OrderID == "" {
		o.OrderID = domain.ID(id)
	}
	return &o, nil
}

// PayURL is the browser link that starts payment for an order. It is only
// navigated to, never fetched here.
func PayURL(orderID domain.ID) string {
	return "/api/pay/" + url.PathEscape(orderID.String())
}

func (c *Conn) mutate(ctx context.Context, cl call) error {
	body, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	_, _, err = unwrap(cl.endpoint, body)
	return err
}
