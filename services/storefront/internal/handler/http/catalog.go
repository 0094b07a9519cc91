package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/activity"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/view"
)

// SortOption is one entry of the home sort select.
type SortOption struct {
	Value    string
	Label    string
	Selected bool
}

var sortChoices = []SortOption{
	{Value: "bestseller", Label: "Terlaris"},
	{Value: "rating_desc", Label: "Rating tertinggi"},
	{Value: "price_asc", Label: "Harga terendah"},
	{Value: "price_desc", Label: "Harga tertinggi"},
}

// BrandLink is a brand filter button.
type BrandLink struct {
	Name   string
	URL    string
	Active bool
}

// HomeData is the home page model.
type HomeData struct {
	Grid     *service.HomeGrid
	Failed   bool
	Search   string
	Sort     string
	Brand    string
	Brands   []BrandLink
	AllURL   string
	Sorts    []SortOption
	ClearURL string
	ShowMore bool
	MoreURL  string
}

// ProductsData is the /products page model.
type ProductsData struct {
	Listing  *service.ProductListing
	Failed   bool
	Search   string
	ClearURL string
	HasPrev  bool
	HasNext  bool
	PrevURL  string
	NextURL  string
}

// Dot is one carousel indicator.
type Dot struct {
	URL    string
	Active bool
}

// DetailData is the product page model.
type DetailData struct {
	ProductID string
	Product   *domain.Product
	Heading   string
	Price     string
	Meta      string
	Badge     string
	Available bool

	Images  []string
	Image   string
	Index   int
	PrevURL string
	NextURL string
	Dots    []Dot
}

// CatalogHandler serves the home, products and product detail pages.
type CatalogHandler struct {
	catalog *service.CatalogService
	cart    *service.CartService
	brands  []string
}

// NewCatalogHandler creates a catalog handler. brands are offered as filter
// buttons on the home page.
func NewCatalogHandler(catalog *service.CatalogService, cart *service.CartService, brands []string) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, cart: cart, brands: brands}
}

// Home handles GET /. With more=1 it probes the next page and redirects.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	v := r.URL.Query()
	q := service.QueryFromValues(v, service.HomeSort)
	pages := service.ParsePages(v)

	if v.Get("more") == "1" {
		out := q.Apply(v)
		out.Del("more")
		next, grew, err := h.catalog.MoreHome(ctx, ac.Conn(), q, pages)
		if err != nil {
			if ac.Unauthorized(w, r, err) {
				return
			}
			logger.FromContext(ctx).Warn("load more failed", slog.String("error", err.Error()))
			ac.Flash(ctx, domain.FlashError, "Gagal memuat produk")
		}
		out.Set("pages", strconv.Itoa(next))
		if err == nil && !grew {
			out.Set("end", "1")
		} else {
			out.Del("end")
		}
		ac.Redirect(w, r, withQuery("/", out))
		return
	}

	data := HomeData{
		Search: q.Search,
		Sort:   q.Sort,
		Brand:  q.Brand,
		Sorts:  sortOptions(q.Sort),
	}
	grid, err := h.catalog.Home(ctx, ac.Conn(), q, pages)
	if err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("home grid failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal memuat produk")
		data.Failed = true
		grid = &service.HomeGrid{Query: q, Pages: 1}
	}
	data.Grid = grid
	data.ShowMore = grid.ShowMore && v.Get("end") != "1"

	more := q.Apply(v)
	more.Set("pages", strconv.Itoa(grid.Pages))
	more.Set("more", "1")
	more.Del("end")
	data.MoreURL = withQuery("/", more)

	for _, b := range h.brands {
		data.Brands = append(data.Brands, BrandLink{
			Name:   b,
			URL:    withQuery("/", q.WithBrand(b).Apply(url.Values{})),
			Active: q.Brand == b,
		})
	}
	data.AllURL = withQuery("/", q.WithBrand("").Apply(url.Values{}))
	data.ClearURL = withQuery("/", q.ClearSearch(v.Get("brand")).Apply(url.Values{}))

	ac.Render(w, r, http.StatusOK, view.PageHome, "Beranda", data)
}

func sortOptions(current string) []SortOption {
	out := make([]SortOption, len(sortChoices))
	for i, o := range sortChoices {
		o.Selected = o.Value == current
		out[i] = o
	}
	return out
}

// Products handles GET /products. With dir=next it probes the next page
// and redirects.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	v := r.URL.Query()
	q := service.QueryFromValues(v, "")
	q.Brand = ""

	if v.Get("dir") == "next" {
		page, ok, err := h.catalog.NextProductsPage(ctx, ac.Conn(), q)
		if err != nil {
			if ac.Unauthorized(w, r, err) {
				return
			}
			logger.FromContext(ctx).Warn("next page probe failed", slog.String("error", err.Error()))
			ac.Flash(ctx, domain.FlashError, "Gagal memuat produk")
		}
		q.Page = page
		out := q.Apply(url.Values{})
		if err == nil && !ok {
			out.Set("end", "1")
		}
		ac.Redirect(w, r, withQuery("/products", out))
		return
	}

	data := ProductsData{Search: q.Search, ClearURL: "/products"}
	listing, err := h.catalog.ProductsPage(ctx, ac.Conn(), q)
	if err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("products page failed", slog.String("error", err.Error()))
		ac.Flash(ctx, domain.FlashError, "Gagal memuat produk")
		data.Failed = true
		listing = &service.ProductListing{Query: q}
	}
	data.Listing = listing
	data.HasPrev = listing.HasPrev
	data.HasNext = listing.HasNext && v.Get("end") != "1"

	shown := listing.Query
	if data.HasPrev {
		prev := shown
		prev.Page--
		data.PrevURL = withQuery("/products", prev.Apply(url.Values{}))
	}
	next := shown.Apply(url.Values{})
	next.Set("page", strconv.Itoa(shown.Page))
	next.Set("dir", "next")
	data.NextURL = withQuery("/products", next)

	ac.Render(w, r, http.StatusOK, view.PageProducts, "Produk", data)
}

// Detail handles GET /products/{id}. A missing or broken product renders
// placeholder texts, never an error page.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	data := DetailData{
		ProductID: id,
		Heading:   "Produk tidak ditemukan",
		Price:     domain.FormatIDR(0),
		Meta:      domain.DetailMetaMissing,
	}

	p, err := h.catalog.Product(ctx, ac.Conn(), id)
	switch {
	case err == nil:
		data.Product = p
		data.Available = true
		data.Heading = p.DisplayName()
		data.Price = p.Price.String()
		data.Meta = p.DetailMeta()
		data.Badge = p.DiscountBadge()
	case ac.Unauthorized(w, r, err):
		return
	case apperrors.IsNotFound(err):
	default:
		logger.FromContext(ctx).Warn("product detail failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		data.Heading = "Gagal memuat produk"
		ac.Flash(ctx, domain.FlashError, "Gagal memuat produk")
	}

	if data.Product != nil {
		data.Images = carouselImages(data.Product.Images)
	}
	data.fillCarousel(atoiDefault(r.URL.Query().Get("img"), 0))

	ac.Render(w, r, http.StatusOK, view.PageDetail, data.Heading, data)
}

func carouselImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img != "" {
			out = append(out, img)
		}
	}
	return out
}

// fillCarousel selects image i, wrapping around in both directions.
func (d *DetailData) fillCarousel(i int) {
	n := len(d.Images)
	if n == 0 {
		return
	}
	i = ((i % n) + n) % n
	d.Index = i
	d.Image = d.Images[i]

	base := "/products/" + url.PathEscape(d.ProductID)
	at := func(k int) string { return base + "?img=" + strconv.Itoa(k) }
	d.PrevURL = at((i - 1 + n) % n)
	d.NextURL = at((i + 1) % n)
	d.Dots = make([]Dot, n)
	for k := range d.Images {
		d.Dots[k] = Dot{URL: at(k), Active: k == i}
	}
}

// AddToCart handles POST /products/{id}/cart.
func (h *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request, ac *AppContext) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	back := "/products/" + url.PathEscape(id)
	if img := r.PostFormValue("img"); img != "" {
		back += "?img=" + url.QueryEscape(img)
	}

	if err := h.cart.Add(ctx, ac.Conn(), id); err != nil {
		if ac.Unauthorized(w, r, err) {
			return
		}
		logger.FromContext(ctx).Warn("add to cart failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		ac.Flash(ctx, domain.FlashError, "Gagal menambah ke keranjang")
		ac.Redirect(w, r, back)
		return
	}

	ac.Track(ctx, activity.CartItemAdded, activity.ItemAdded{ProductID: id})
	ac.Flash(ctx, domain.FlashSuccess, "Ditambahkan ke keranjang")
	ac.Redirect(w, r, back)
}
