package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/EcommerceGo/pkg/pagination"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/api"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// HomeSort is the sort order the home grid starts with.
const HomeSort = "bestseller"

// ProductSource is the part of the backend the catalog pages read from.
type ProductSource interface {
	ListProducts(ctx context.Context, p api.ListParams) (pagination.Page[domain.Product], error)
	SearchProducts(ctx context.Context, p api.ListParams) (pagination.Page[domain.Product], error)
}

// ProductReader loads a single product.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Query is the catalog state mirrored in the URL. Search and Brand are
// mutually exclusive.
type Query struct {
	Page   int
	Sort   string
	Brand  string
	Search string
}

// QueryFromValues restores a Query from a query string. When both q and
// brand are present, q wins.
func QueryFromValues(v url.Values, defaultSort string) Query {
	q := Query{
		Page:   pagination.FromValues(v).Page,
		Sort:   strings.TrimSpace(v.Get("sort")),
		Search: strings.TrimSpace(v.Get("q")),
		Brand:  strings.TrimSpace(v.Get("brand")),
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	if q.Search != "" {
		q.Brand = ""
	}
	return q
}

// WithSearch starts a search, dropping any brand filter.
func (q Query) WithSearch(term string) Query {
	q.Search = strings.TrimSpace(term)
	q.Brand = ""
	q.Page = 1
	return q
}

// WithBrand filters by brand, dropping any search.
func (q Query) WithBrand(brand string) Query {
	q.Brand = strings.TrimSpace(brand)
	q.Search = ""
	q.Page = 1
	return q
}

// ClearSearch drops the search term and goes back to page 1, restoring
// brand when one is given.
func (q Query) ClearSearch(brand string) Query {
	q.Search = ""
	q.Brand = strings.TrimSpace(brand)
	q.Page = 1
	return q
}

// Apply merges q into a copy of v. Parameters q does not own are kept.
func (q Query) Apply(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}

	if q.Search != "" {
		out.Set("q", q.Search)
		out.Del("brand")
	} else {
		out.Del("q")
		if q.Brand != "" {
			out.Set("brand", q.Brand)
		} else {
			out.Del("brand")
		}
	}
	if q.Sort != "" {
		out.Set("sort", q.Sort)
	} else {
		out.Del("sort")
	}
	if q.Page > 1 {
		out.Set("page", strconv.Itoa(q.Page))
	} else {
		out.Del("page")
	}
	return out
}

func (q Query) params(page, limit int) api.ListParams {
	return api.ListParams{Page: page, Limit: limit, Sort: q.Sort, Brand: q.Brand, Search: q.Search}
}

// ProductListing is one page of the /products grid.
type ProductListing struct {
	Query    Query
	Products []domain.Product
	HasPrev  bool
	HasNext  bool
}

// Empty reports whether nothing was found at all.
func (l *ProductListing) Empty() bool { return len(l.Products) == 0 }

// Indicator is the "Halaman N" text. An empty catalog reads "Halaman 0".
func (l *ProductListing) Indicator() string {
	if l.Empty() {
		return "Halaman 0"
	}
	return fmt.Sprintf("Halaman %d", l.Query.Page)
}

// HomeGrid is the accumulated home page grid.
type HomeGrid struct {
	Query    Query
	Products []domain.Product
	Pages    int
	ShowMore bool
}

// CatalogService loads catalog pages by probing.
type CatalogService struct {
	limit    int
	maxPages int
	logger   *slog.Logger
}

// NewCatalogService creates a catalog service. maxPages caps the home grid.
func NewCatalogService(limit, maxPages int, logger *slog.Logger) *CatalogService {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	return &CatalogService{limit: limit, maxPages: maxPages, logger: logger}
}

// Limit is the page size requested from the backend.
func (s *CatalogService) Limit() int { return s.limit }

// MaxPages is the home grid cap.
func (s *CatalogService) MaxPages() int { return s.maxPages }

func (s *CatalogService) prober(src ProductSource, q Query) *pagination.Prober[domain.Product] {
	fetch := func(ctx context.Context, page int) (pagination.Page[domain.Product], error) {
		if q.Search != "" {
			return src.SearchProducts(ctx, q.params(page, s.limit))
		}
		return src.ListProducts(ctx, q.params(page, s.limit))
	}
	return pagination.NewProber(fetch, s.limit)
}

// ProductsPage loads q.Page, stepping back while a later page is empty.
func (s *CatalogService) ProductsPage(ctx context.Context, src ProductSource, q Query) (*ProductListing, error) {
	page, err := s.prober(src, q).Settle(ctx, q.Page)
	if err != nil {
		return nil, fmt.Errorf("load products page %d: %w", q.Page, err)
	}

	q.Page = page.Number
	listing := &ProductListing{Query: q, Products: page.Items}
	if !listing.Empty() {
		listing.HasPrev = q.Page > 1
		listing.HasNext = page.HasNext(s.limit)
	}
	return listing, nil
}

// NextProductsPage probes the page after q.Page. It returns the page to show
// and whether the probe found items.
func (s *CatalogService) NextProductsPage(ctx context.Context, src ProductSource, q Query) (int, bool, error) {
	current := q.Page
	if current < 1 {
		current = 1
	}
	_, ok, err := s.prober(src, q).Advance(ctx, current)
	if err != nil {
		return current, false, fmt.Errorf("probe products page %d: %w", current+1, err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "next page probe came back empty", slog.Int("page", current+1))
		return current, false, nil
	}
	return current + 1, true, nil
}

// Home loads pages 1..pages of the home grid, capped at the configured
// maximum.
func (s *CatalogService) Home(ctx context.Context, src ProductSource, q Query, pages int) (*HomeGrid, error) {
	pages = s.clampPages(pages)
	acc, err := s.prober(src, q).Accumulate(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("load home grid: %w", err)
	}

	grid := &HomeGrid{Query: q, Products: acc.Items, Pages: acc.Number}
	if grid.Pages < 1 {
		grid.Pages = 1
	}
	grid.ShowMore = len(acc.Items) > 0 && acc.HasMore != nil && *acc.HasMore && grid.Pages < s.maxPages
	return grid, nil
}

// MoreHome probes the page after pages. It returns the new page count and
// whether the grid grew.
func (s *CatalogService) MoreHome(ctx context.Context, src ProductSource, q Query, pages int) (int, bool, error) {
	pages = s.clampPages(pages)
	if pages >= s.maxPages {
		return pages, false, nil
	}
	_, ok, err := s.prober(src, q).Advance(ctx, pages)
	if err != nil {
		return pages, false, fmt.Errorf("probe home page %d: %w", pages+1, err)
	}
	if !ok {
		return pages, false, nil
	}
	return pages + 1, true, nil
}

func (s *CatalogService) clampPages(pages int) int {
	if pages < 1 {
		return 1
	}
	if pages > s.maxPages {
		return s.maxPages
	}
	return pages
}

// Product loads one product for the detail page.
func (s *CatalogService) Product(ctx context.Context, src ProductReader, id string) (*domain.Product, error) {
	p, err := src.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// ParsePages reads the home "pages" parameter.
func ParsePages(v url.Values) int {
	n, err := strconv.Atoi(v.Get("pages"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
