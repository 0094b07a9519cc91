package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_Decode(t *testing.T) {
	cases := map[string]Amount{
		`150000`:      150000,
		`149999.6`:    150000,
		`"250000"`:    250000,
		`" 1200.4 "`:  1200,
		`null`:        0,
		`""`:          0,
	}
	for in, want := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(in), &a), in)
		assert.Equal(t, want, a, in)
	}

	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
}

func TestID_Decode(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"p-1","b":42,"c":null}`), &v))
	assert.Equal(t, ID("p-1"), v.A)
	assert.Equal(t, ID("42"), v.B)
	assert.Equal(t, ID(""), v.C)
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp150.000", FormatIDR(150000))
	assert.Equal(t, "-Rp150.000", FormatIDR(-150000))
	assert.Equal(t, "Rp0", FormatIDR(0))
	assert.Equal(t, "Rp1.250.000", FormatIDR(1250000))
	assert.Equal(t, "Rp999", Amount(999).String())
	assert.Equal(t, "-Rp9.223.372.036.854.775.808", FormatIDR(math.MinInt64))
	assert.Equal(t, "Rp9.223.372.036.854.775.807", FormatIDR(math.MaxInt64))
}

func TestProduct_DecodeFallbacks(t *testing.T) {
	var p Product
	body := `{"id":7,"name":"Tas","price":"150000","discount":10,"rating":4.6,"sold":12,"image":"/a.png"}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, Amount(150000), p.Price)
	assert.Equal(t, 12, p.SoldCount)
	assert.Equal(t, []string{"/a.png"}, p.Images)
	assert.True(t, p.Valid())

	var q Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","sold_count":3,"sold":9,"images":["/b.png"],"image":"/a.png"}`), &q))
	assert.Equal(t, 3, q.SoldCount)
	assert.Equal(t, []string{"/b.png"}, q.Images)
}

func TestProduct_Display(t *testing.T) {
	p := Product{Name: "Tas", Price: 150000, Discount: 10, Rating: 4.6, SoldCount: 12}

	assert.Equal(t, "-10%", p.DiscountBadge())
	assert.Equal(t, "Rp150.000", FormatIDR(p.Price))
	assert.Equal(t, "⭐⭐⭐⭐⭐", p.Stars())
	assert.Equal(t, "⭐⭐⭐⭐⭐ · 12 terjual", p.CardMeta())
	assert.Equal(t, "⭐ 4.6 · 12 terjual", p.DetailMeta())
	assert.Equal(t, PlaceholderImage, p.Image())

	p.Discount = 0
	assert.Empty(t, p.DiscountBadge())
	assert.Equal(t, "Nama produk tidak tersedia", Product{}.DisplayName())
}

func TestShortName(t *testing.T) {
	exact := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	require.Len(t, []rune(exact), 60)
	assert.Equal(t, exact, ShortName(exact))

	long := exact + "é"
	got := ShortName(long)
	assert.Len(t, []rune(got), 58)
	assert.Equal(t, "…", string([]rune(got)[57:]))
}

func TestCartItem_DecodeFallbacks(t *testing.T) {
	var c CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","product_name":"Topi","price":50000}`), &c))
	assert.Equal(t, ID("p1"), c.ProductID)
	assert.Equal(t, "Topi", c.Name)
	assert.Equal(t, 1, c.Quantity)
	assert.Equal(t, Amount(50000), c.Subtotal())

	var d CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":"p2","id":"row","name":"Jaket","price":100000,"quantity":3,"selected":true}`), &d))
	assert.Equal(t, ID("p2"), d.ProductID)
	assert.Equal(t, Amount(300000), d.Subtotal())
	assert.True(t, d.Selected)
}

func TestOrder_DecodeFallbacks(t *testing.T) {
	body := `{"id":"ORD-1","date":"2026-10-14T09:30:00+07:00","status":"Paid","total":"300000",
		"items":[{"product_id":{"id":"p1","name":"Jaket","brand":"Eiger","images":["/j.png"]},"quantity":2,"price":150000},
		         {"product_id":"p9","quantity":1,"price":1000,"subtotal":1000}]}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))

	assert.Equal(t, ID("ORD-1"), o.OrderID)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, Amount(300000), o.TotalPrice)
	require.Len(t, o.Items, 2)

	assert.Equal(t, "Jaket (2)", o.Items[0].Label())
	assert.Equal(t, Amount(300000), o.Items[0].Subtotal)
	assert.Equal(t, "/j.png", o.Items[0].ImageURL())
	assert.Equal(t, "Eiger", o.Items[0].Brand)

	assert.Equal(t, "p9 (1)", o.Items[1].Label())
	assert.Equal(t, PlaceholderImage, o.Items[1].ImageURL())
	assert.Equal(t, "14/10/2026, 09.30.00", FormatDate(o.CreatedAt))
}

func TestOrderStatus(t *testing.T) {
	lit := func(stages []Stage) []bool {
		out := make([]bool, len(stages))
		for i, s := range stages {
			out[i] = s.Lit
		}
		return out
	}

	assert.Equal(t, []bool{true, false, false}, lit(StatusPending.Tracker()))
	assert.Equal(t, []bool{true, true, false}, lit(StatusPaid.Tracker()))
	assert.Equal(t, []bool{true, true, true}, lit(StatusDelivered.Tracker()))
	assert.Equal(t, []bool{true, false, false}, lit(OrderStatus("refunded").Tracker()))

	assert.Equal(t, "Menunggu Pembayaran", StatusPending.Label())
	assert.Equal(t, "refunded", OrderStatus("refunded").Label())
	assert.Equal(t, "Bayar Sekarang", StatusPending.ActionText())
	assert.True(t, StatusPending.Payable())
	assert.Equal(t, "Pembayaran Berhasil", StatusPaid.ActionText())
	assert.Equal(t, "Pesanan Selesai", StatusDelivered.ActionText())
	assert.Equal(t, "pill-green", StatusDelivered.PillClass())
	assert.Equal(t, "pill-blue", StatusPaid.PillClass())
	assert.Equal(t, "pill-yellow", OrderStatus("weird").PillClass())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(""))
	assert.Equal(t, "kemarin", FormatDate("kemarin"))
	assert.Equal(t, "1/2/2026, 08.05.09", FormatDate("2026-02-01 08:05:09"))
	assert.Equal(t, "1/2/2026, 08.05.09", FormatDate("2026-02-01T01:05:09Z"))
}

func TestAddress_OptionText(t *testing.T) {
	a := Address{Label: "Rumah", AddressLine: "Jl. Merdeka 1", City: "Bandung"}
	assert.Equal(t, "Rumah: Jl. Merdeka 1, Bandung", a.OptionText())
	a.IsDefault = true
	assert.Equal(t, "Rumah: Jl. Merdeka 1, Bandung (Utama)", a.OptionText())
}

func TestSession_Authenticated(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
	assert.False(t, (&Session{Email: "a@b.c"}).Authenticated())
	assert.True(t, (&Session{UserID: "u1"}).Authenticated())
}

func TestOrder_RoundTrip(t *testing.T) {
	in := Order{
		OrderID:    "ORD-2",
		CreatedAt:  "2026-10-14T09:30:00+07:00",
		Status:     StatusPending,
		TotalPrice: 20000,
		Items: []OrderItem{
			{ProductID: "p1", ProductName: "Kaos", Brand: "Eiger", Image: "/k.png", Quantity: 2, Price: 10000, Subtotal: 20000},
			{ProductID: "p2", Quantity: 1},
		},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Order
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
