package domain

import "time"

// OrderStatus is the backend order state. Unknown values are kept verbatim.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusDelivered OrderStatus = "delivered"
)

// Label is the Indonesian status text shown on the order detail page.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Menunggu Pembayaran"
	case StatusPaid:
		return "Sudah Dibayar"
	case StatusDelivered:
		return "Sudah Dikirim"
	}
	return string(s)
}

// Payable reports whether the order still waits for payment.
func (s OrderStatus) Payable() bool { return s == StatusPending }

// ActionText is the call to action under the order total.
func (s OrderStatus) ActionText() string {
	switch s {
	case StatusPending:
		return "Bayar Sekarang"
	case StatusPaid:
		return "Pembayaran Berhasil"
	}
	return "Pesanan Selesai"
}

// PillClass picks the colour of the status pill in the orders table.
func (s OrderStatus) PillClass() string {
	switch s {
	case StatusDelivered:
		return "pill-green"
	case StatusPaid:
		return "pill-blue"
	}
	return "pill-yellow"
}

// Stage is one step of the order tracker.
type Stage struct {
	Step  int
	Label string
	Lit   bool
}

// Tracker returns the three tracker stages. The first is always lit; an
// unknown status lights only the first.
func (s OrderStatus) Tracker() []Stage {
	paid := s == StatusPaid || s == StatusDelivered
	return []Stage{
		{Step: 1, Label: "Dipesan", Lit: true},
		{Step: 2, Label: "Dibayar", Lit: paid},
		{Step: 3, Label: "Dikirim", Lit: s == StatusDelivered},
	}
}

var wib = time.FixedZone("WIB", 7*60*60)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// FormatDate renders a backend timestamp the way id-ID locales print dates,
// e.g. 14/10/2026, 09.30.00. Unparseable input is returned as is and an
// empty value renders as "-".
func FormatDate(raw string) string {
	if raw == "" {
		return "-"
	}
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, raw, wib)
		if err == nil {
			return t.In(wib).Format("2/1/2006, 15.04.05")
		}
	}
	return raw
}
