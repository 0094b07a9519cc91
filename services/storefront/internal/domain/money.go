package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount as Indonesian Rupiah with no fractional
// digits, e.g. Rp150.000 or -Rp150.000.
func FormatIDR(a Amount) string {
	if a < 0 {
		// Negated as unsigned so the smallest amount does not overflow.
		return "-Rp" + idPrinter.Sprintf("%d", -uint64(a))
	}
	return "Rp" + idPrinter.Sprintf("%d", int64(a))
}

// String implements fmt.Stringer using FormatIDR.
func (a Amount) String() string { return FormatIDR(a) }
