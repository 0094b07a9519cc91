package pagination

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultLimit is the page size the storefront requests from the backend.
const DefaultLimit = 20

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// FromValues reads "page" from a query string. Missing, non-numeric and
// non-positive values fall back to page 1.
func FromValues(q url.Values) Params {
	p := DefaultParams()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	return p
}

// Page is one fetched page of a listing. HasMore is nil when the backend did
// not say whether another page exists.
type Page[T any] struct {
	Number  int
	Items   []T
	HasMore *bool
}

// Empty reports whether the page carries no items.
func (p Page[T]) Empty() bool { return len(p.Items) == 0 }

// HasNext decides whether a next-page affordance should be shown. An explicit
// has_more from the backend wins; otherwise a full page suggests more.
func HasNext(items, limit int, hasMore *bool) bool {
	if hasMore != nil {
		return *hasMore
	}
	return limit > 0 && items == limit
}

// HasNext applies the package-level HasNext to p.
func (p Page[T]) HasNext(limit int) bool {
	return HasNext(len(p.Items), limit, p.HasMore)
}

// Fetcher loads one 1-based page.
type Fetcher[T any] func(ctx context.Context, page int) (Page[T], error)

// Prober walks a listing without ever exposing an empty page: advancing
// first fetches the next page and only commits to it when it has items.
type Prober[T any] struct {
	Fetch Fetcher[T]
	Limit int
}

// NewProber returns a Prober over fetch. A non-positive limit means DefaultLimit.
func NewProber[T any](fetch Fetcher[T], limit int) *Prober[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Prober[T]{Fetch: fetch, Limit: limit}
}

// Advance probes page current+1. It reports ok=false, and the caller keeps
// current, when the probe comes back empty. The probe is always issued, even
// if an earlier page claimed has_more.
func (p *Prober[T]) Advance(ctx context.Context, current int) (next Page[T], ok bool, err error) {
	if current < 1 {
		current = 1
	}
	next, err = p.load(ctx, current+1)
	if err != nil {
		return Page[T]{}, false, err
	}
	return next, !next.Empty(), nil
}

// Settle loads page n. When a page beyond the first comes back empty it steps
// back one page at a time until it finds items or reaches page 1, and returns
// whichever page it landed on.
func (p *Prober[T]) Settle(ctx context.Context, n int) (Page[T], error) {
	if n < 1 {
		n = 1
	}
	for {
		page, err := p.load(ctx, n)
		if err != nil {
			return Page[T]{}, err
		}
		if !page.Empty() || n == 1 {
			return page, nil
		}
		n--
	}
}

// Accumulate loads pages 1..n sequentially and concatenates their items. It
// stops early at the first empty or short page. The returned Page carries the
// number of the last non-empty page fetched, and HasMore reports whether that
// page was full and claimed a successor.
func (p *Prober[T]) Accumulate(ctx context.Context, n int) (Page[T], error) {
	if n < 1 {
		n = 1
	}
	acc := Page[T]{Number: 1}
	for i := 1; i <= n; i++ {
		page, err := p.load(ctx, i)
		if err != nil {
			return Page[T]{}, err
		}
		if page.Empty() {
			if i == 1 {
				return page, nil
			}
			break
		}
		acc.Items = append(acc.Items, page.Items...)
		acc.Number = i
		more := page.HasNext(p.Limit) && len(page.Items) >= p.Limit
		acc.HasMore = &more
		if !more {
			break
		}
	}
	return acc, nil
}

func (p *Prober[T]) load(ctx context.Context, n int) (Page[T], error) {
	page, err := p.Fetch(ctx, n)
	if err != nil {
		return Page[T]{}, err
	}
	page.Number = n
	return page, nil
}
