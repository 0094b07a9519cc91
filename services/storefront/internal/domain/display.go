package domain

import (
	"fmt"
	"math"
	"strings"
)

// PlaceholderImage is shown for products without pictures.
const PlaceholderImage = "/static/placeholder.png"

const (
	nameLimit = 60
	nameKeep  = 57
)

// ShortName cuts names longer than 60 runes to 57 runes plus an ellipsis.
func ShortName(name string) string {
	r := []rune(name)
	if len(r) <= nameLimit {
		return name
	}
	return string(r[:nameKeep]) + "…"
}

// PrimaryImage returns the first image or the placeholder.
func PrimaryImage(images []string) string {
	for _, img := range images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return PlaceholderImage
}

// DiscountBadge returns "-N%" for a positive discount and "" otherwise.
func (p Product) DiscountBadge() string {
	if p.Discount <= 0 {
		return ""
	}
	return "-" + p.Discount.String() + "%"
}

// Stars repeats ⭐ round(rating) times.
func (p Product) Stars() string {
	n := int(math.Round(float64(p.Rating)))
	if n < 0 {
		n = 0
	}
	return strings.Repeat("⭐", n)
}

// CardMeta is the rating line under a product card.
func (p Product) CardMeta() string {
	return fmt.Sprintf("%s · %d terjual", p.Stars(), p.SoldCount)
}

// DetailMeta is the rating line on the product page.
func (p Product) DetailMeta() string {
	return fmt.Sprintf("⭐ %s · %d terjual", p.Rating, p.SoldCount)
}

// DisplayName is the product name or a fallback text.
func (p Product) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Nama produk tidak tersedia"
	}
	return p.Name
}

// Image is the product's primary image.
func (p Product) Image() string { return PrimaryImage(p.Images) }

// Image is the cart row image.
func (c CartItem) Image() string { return PrimaryImage(c.Images) }

// ImageURL is the order item image.
func (o OrderItem) ImageURL() string {
	if o.Image == "" {
		return PlaceholderImage
	}
	return o.Image
}

// Title is the order item name, falling back to the product id.
func (o OrderItem) Title() string {
	if o.ProductName != "" {
		return o.ProductName
	}
	return o.ProductID.String()
}

// DetailMetaMissing is the meta line shown when a product is unavailable.
const DetailMetaMissing = "⭐ 0 · 0 terjual"

