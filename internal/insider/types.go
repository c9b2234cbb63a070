// Package insider fetches director/supervisor/executive shareholding
// disclosures from the Shenzhen and Shanghai exchanges and a third-party
// aggregator, and normalizes them into one canonical event record.
package insider

import "errors"

// ErrBusy reports the provider-specific "system busy" status.
var ErrBusy = errors.New("provider busy, try again later")

// ErrInvalidDate reports an unparseable user-supplied query date.
var ErrInvalidDate = errors.New("invalid date, want YYYY/MM/DD")

// Trading is the canonical insider trading event. ChangeShares is signed:
// positive for an acquisition, negative for a disposal. HoldingAfter is
// NaN when the source omits the post-change balance.
type Trading struct {
	CompanyCode  string
	CompanyName  string
	PersonName   string
	ChangeDate   string
	FormDate     string
	ChangeShares float64
	AvgPrice     float64
	Reason       string
	HoldingAfter float64
	Role         string
}

// PageInfo describes the pagination state of a paged disclosure query.
type PageInfo struct {
	TotalPages int
	TotalRows  int
}
