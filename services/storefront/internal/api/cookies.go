package api

import "net/http"

// ForwardableCookies drops the cookies the storefront owns so only the
// backend's own cookies are sent upstream.
func ForwardableCookies(cookies []*http.Cookie, local ...string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if isLocal(ck.Name, local) {
			continue
		}
		out = append(out, ck)
	}
	return out
}

func isLocal(name string, local []string) bool {
	for _, l := range local {
		if name == l {
			return true
		}
	}
	return false
}
