package insider

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// InDateLayout is the user-facing date format for --from/--to.
	InDateLayout = "2006/01/02"
	// OutDateLayout is the wire format the disclosure endpoints expect.
	OutDateLayout = "2006-01-02"
)

// Span clamps for the two query shapes.
const (
	maxSpanMonths = 24
	maxSpanDays   = 60

	defaultCodeSpanMonths = 12
	defaultLatestSpanDays = 10
)

// DateRange is a resolved from/to pair for a disclosure query.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Wire formats the range bounds for a query-parameter contract.
func (r DateRange) Wire() (from, to string) {
	return r.From.Format(OutDateLayout), r.To.Format(OutDateLayout)
}

// Display formats the range bounds for user-facing output.
func (r DateRange) Display() (from, to string) {
	return r.From.Format(InDateLayout), r.To.Format(InDateLayout)
}

// ResolveWindow resolves the range for a windowed (per-code) query.
// Priority: explicit dates > span in months (clamped to 24) > the default
// 12 month span. An explicit date that does not parse is a hard error.
func ResolveWindow(fromStr, toStr, spanStr string, now time.Time) (DateRange, error) {
	months := defaultCodeSpanMonths
	if n, ok := leadingInt(spanStr); ok {
		months = clamp(n, 1, maxSpanMonths)
	}

	r := DateRange{From: now.AddDate(0, -months, 0), To: now}

	if fromStr != "" {
		from, err := time.Parse(InDateLayout, fromStr)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidDate, fromStr)
		}
		r.From = from
	}
	if toStr != "" {
		to, err := time.Parse(InDateLayout, toStr)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidDate, toStr)
		}
		r.To = to
	}
	return r, nil
}

// ResolveLatest resolves the range for a "latest activity" query. The span
// is in days, clamped to 60, defaulting to 10.
func ResolveLatest(spanStr string, now time.Time) DateRange {
	days := defaultLatestSpanDays
	if n, ok := leadingInt(spanStr); ok {
		days = clamp(n, 1, maxSpanDays)
	}
	return DateRange{From: now.AddDate(0, 0, -days), To: now}
}

// leadingInt parses the leading digit run of a span value like "3m" or
// "10d"; the unit suffix is implied by the query shape.
func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
