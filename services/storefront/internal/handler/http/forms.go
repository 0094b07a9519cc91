package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// backTo returns the form's "back" field when it is a local path, else
// fallback.
func backTo(r *http.Request, fallback string) string {
	back := r.PostFormValue("back")
	if isLocalPath(back) {
		return back
	}
	return fallback
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// formIDs collects the non-empty values of a repeated field.
func formIDs(values []string) []domain.ID {
	ids := make([]domain.ID, 0, len(values))
	seen := make(map[domain.ID]struct{}, len(values))
	for _, v := range values {
		id := domain.ID(strings.TrimSpace(v))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func idStrings(ids []domain.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// setIDs replaces key in v with ids.
func setIDs(v url.Values, key string, ids []domain.ID) {
	v.Del(key)
	for _, id := range ids {
		v.Add(key, id.String())
	}
}

// withQuery joins path and a query string, omitting an empty one.
func withQuery(path string, v url.Values) string {
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
