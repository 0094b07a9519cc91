package middleware

import (
	"html/template"
	"log/slog"
	"net/http"
	"runtime/debug"
)

var panicPage = template.Must(template.New("panic").Parse(`<!doctype html>
<html lang="id">
<head><meta charset="utf-8"><title>Terjadi kesalahan</title></head>
<body>
<main>
<h1>Terjadi kesalahan</h1>
<p>Maaf, halaman tidak dapat ditampilkan. Silakan coba lagi.</p>
{{if .}}<p><small>ID: {{.}}</small></p>{{end}}
<p><a href="/">Kembali ke beranda</a></p>
</main>
</body>
</html>`))

// Recovery recovers from panics and renders a plain HTML error page instead
// of crashing the connection. The correlation id, when known, is shown so
// the visitor can quote it.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusInternalServerError)
				if err := panicPage.Execute(w, w.Header().Get("X-Correlation-ID")); err != nil {
					l.Error("failed to render panic page", slog.String("error", err.Error()))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
