package insider

import (
	"math"
	"sort"
)

// Summary aggregates a set of trading events. Share counts and money
// amounts are sums of absolute values per side.
type Summary struct {
	BuyShares    float64
	SellShares   float64
	BuyCost      float64
	SellProceeds float64
	NetBuyShares float64
	NetBuyCost   float64
}

// BuyAvgPrice returns the volume-weighted buy price. The second return is
// false when no shares were bought; the average is not applicable then.
func (s Summary) BuyAvgPrice() (float64, bool) {
	if s.BuyShares == 0 {
		return 0, false
	}
	return s.BuyCost / s.BuyShares, true
}

// SellAvgPrice is the disposal-side counterpart of BuyAvgPrice.
func (s Summary) SellAvgPrice() (float64, bool) {
	if s.SellShares == 0 {
		return 0, false
	}
	return s.SellProceeds / s.SellShares, true
}

// Summarize computes the aggregate over a set of events. The sign of
// ChangeShares buckets each event: positive into the buy side, negative
// into the sell side.
func Summarize(tradings []Trading) Summary {
	var s Summary
	for _, t := range tradings {
		if t.ChangeShares > 0 {
			s.BuyShares += t.ChangeShares
			s.BuyCost += t.ChangeShares * t.AvgPrice
		} else {
			s.SellShares += math.Abs(t.ChangeShares)
			s.SellProceeds += math.Abs(t.ChangeShares * t.AvgPrice)
		}
	}
	s.NetBuyShares = s.BuyShares - s.SellShares
	s.NetBuyCost = s.BuyCost - s.SellProceeds
	return s
}

// CompanySummary is a per-company aggregate for latest-activity queries.
type CompanySummary struct {
	Company string
	Summary
}

// SummarizeByCompany groups events by company identity and aggregates each
// group, returning the groups sorted by net buy cost descending. The sort
// is stable: equal groups keep their first-seen order.
func SummarizeByCompany(tradings []Trading) []CompanySummary {
	groups := make(map[string][]Trading)
	var order []string
	for _, t := range tradings {
		key := t.CompanyCode + " - " + t.CompanyName
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	out := make([]CompanySummary, 0, len(order))
	for _, key := range order {
		out = append(out, CompanySummary{Company: key, Summary: Summarize(groups[key])})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetBuyCost > out[j].NetBuyCost
	})
	return out
}
