package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillCarousel(t *testing.T) {
	three := []string{"a.jpg", "b.jpg", "c.jpg"}

	tests := []struct {
		name   string
		images []string
		img    int
		index  int
		prev   string
		next   string
	}{
		{name: "first wraps back", images: three, img: 0, index: 0, prev: "/products/p1?img=2", next: "/products/p1?img=1"},
		{name: "last wraps forward", images: three, img: 2, index: 2, prev: "/products/p1?img=1", next: "/products/p1?img=0"},
		{name: "middle", images: three, img: 1, index: 1, prev: "/products/p1?img=0", next: "/products/p1?img=2"},
		{name: "negative", images: three, img: -1, index: 2, prev: "/products/p1?img=1", next: "/products/p1?img=0"},
		{name: "past the end", images: three, img: 3, index: 0, prev: "/products/p1?img=2", next: "/products/p1?img=1"},
		{name: "far past the end", images: three, img: 7, index: 1, prev: "/products/p1?img=0", next: "/products/p1?img=2"},
		{name: "single image", images: []string{"a.jpg"}, img: 5, index: 0, prev: "/products/p1?img=0", next: "/products/p1?img=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetailData{ProductID: "p1", Images: tt.images}
			d.fillCarousel(tt.img)

			assert.Equal(t, tt.index, d.Index)
			assert.Equal(t, tt.images[tt.index], d.Image)
			assert.Equal(t, tt.prev, d.PrevURL)
			assert.Equal(t, tt.next, d.NextURL)

			require.Len(t, d.Dots, len(tt.images))
			for k, dot := range d.Dots {
				assert.Equal(t, k == tt.index, dot.Active, "dot %d", k)
			}
		})
	}
}

func TestFillCarousel_NoImages(t *testing.T) {
	d := DetailData{ProductID: "p1"}
	d.fillCarousel(2)

	assert.Empty(t, d.Image)
	assert.Empty(t, d.PrevURL)
	assert.Empty(t, d.NextURL)
	assert.Empty(t, d.Dots)
}

func TestProductDetail_CarouselWraps(t *testing.T) {
	h := newHarness(t)
	h.backend.on("GET /api/products/{id}", reply(`{"success":true,"data":{"id":"p1","name":"Tenda Dome","price":150000,`+
		`"images":["https://img.example/1.jpg","","https://img.example/2.jpg","https://img.example/3.jpg"]}}`))

	rr := h.get("/products/p1?img=-1")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `src="https://img.example/3.jpg"`)
	assert.Contains(t, body, `class="nav prev" href="/products/p1?img=1"`)
	assert.Contains(t, body, `class="nav next" href="/products/p1?img=0"`)
	assert.Contains(t, body, `<a class="dot active" href="/products/p1?img=2"></a>`)
	assert.Contains(t, body, `<a class="dot" href="/products/p1?img=0"></a>`)
}

func TestProductDetail_NoImages(t *testing.T) {
	h := newHarness(t)
	h.backend.on("GET /api/products/{id}", reply(`{"success":true,"data":{"id":"p1","name":"Tenda Dome","price":150000,"images":[]}}`))

	rr := h.get("/products/p1?img=4")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Tidak ada gambar")
	assert.NotContains(t, body, `class="nav prev"`)
	assert.NotContains(t, body, `class="dot`)
}
