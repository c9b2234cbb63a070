// Package render is the presentation sink: number formatting and table
// layout for terminal output.
package render

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer adds thousands separators the way the finance pages do.
var printer = message.NewPrinter(language.English)

// NotApplicable marks an average that has no defined value.
const NotApplicable = "N/A"

// Shares formats a share count; a NaN balance renders as "-".
func Shares(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return printer.Sprintf("%.0f", v)
}

// Price formats a price with two decimals.
func Price(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return printer.Sprintf("%.2f", v)
}

// Money formats a monetary amount in yuan.
func Money(v float64) string {
	return printer.Sprintf("¥ %.2f", v)
}

// Pct formats a percentage; NaN (e.g. a change against a zero close)
// renders as "-".
func Pct(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return printer.Sprintf("%.2f", v) + " %"
}

// AvgPrice formats a conditional average, rendering N/A when the value is
// undefined.
func AvgPrice(v float64, ok bool) string {
	if !ok {
		return NotApplicable
	}
	return Price(v)
}

// Star formats a star rating: whole stars print bare, fractional ratings
// keep their precision.
func Star(v float64) string {
	if v == math.Floor(v) {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.4f", v)
}

// Opt formats an optional provider field; absence means unknown.
func Opt(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}
