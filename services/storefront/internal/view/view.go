package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
)

//go:embed templates
var embedded embed.FS

//go:embed static
var staticFiles embed.FS

// Page names, one per template file under templates/.
const (
	PageHome     = "home"
	PageProducts = "products"
	PageDetail   = "detail"
	PageCart     = "cart"
	PageCheckout = "checkout"
	PageOrders   = "orders"
	PageOrder    = "order"
	PageLogin    = "login"
	PageRegister = "register"
	PageError    = "error"
)

var pageNames = []string{
	PageHome, PageProducts, PageDetail, PageCart, PageCheckout,
	PageOrders, PageOrder, PageLogin, PageRegister, PageError,
}

// Templates returns the embedded template tree. Its layout matches the
// source directory so a development server can read the same files from
// disk.
func Templates() fs.FS { return embedded }

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	fsys   fs.FS
	reload bool
	logger *slog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New parses every page from fsys. With reload set the templates are parsed
// again on every render.
func New(fsys fs.FS, reload bool, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{fsys: fsys, reload: reload, logger: logger}
	pages, err := parsePages(fsys)
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(fsys, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.reload {
		pages, err := parsePages(r.fsys)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pages = pages
		r.mu.Unlock()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	return t, nil
}

// Render executes page name into a buffer and only then writes it, so a
// template failure never leaves a half-written page. Only template errors
// are returned; a client that went away is not one.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("execute page %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// RenderError renders the error page, falling back to plain text when even
// that fails.
func (r *Renderer) RenderError(w http.ResponseWriter, status int, page *Page) {
	if err := r.Render(w, status, PageError, page); err != nil {
		r.logger.Error("failed to render error page", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(status), status)
	}
}

// Static serves the embedded stylesheet and images.
func Static() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
