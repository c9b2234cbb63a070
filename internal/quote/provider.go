package quote

import (
	"fmt"
	"strings"
)

// Schema describes one quote provider declaratively: where to ask, how a
// symbol's fragment is located in the body, and which positional field
// carries which value. Optional indexes are nil when the provider does not
// expose the field at all.
type Schema struct {
	Name string
	URL  string
	// Flag prefixes each symbol's pseudo-assignment, e.g. "hq_str_" so the
	// fragment for sz000001 reads hq_str_sz000001="...".
	Flag string
	// Sep splits an assignment value into positional fields.
	Sep string

	NameIdx  int
	PriceIdx int
	OpenIdx  int
	CloseIdx int
	LowIdx   int
	HighIdx  int

	CapacityIdx *int
	PEIdx       *int
	PBIdx       *int
}

func idx(i int) *int { return &i }

// Sina carries no capitalization or valuation fields.
var Sina = Schema{
	Name:     "sina",
	URL:      "http://hq.sinajs.cn/list=",
	Flag:     "hq_str_",
	Sep:      ",",
	NameIdx:  0,
	PriceIdx: 3,
	OpenIdx:  1,
	CloseIdx: 2,
	LowIdx:   5,
	HighIdx:  4,
}

var Tencent = Schema{
	Name:        "tencent",
	URL:         "http://qt.gtimg.cn/q=",
	Flag:        "v_",
	Sep:         "~",
	NameIdx:     1,
	PriceIdx:    3,
	OpenIdx:     5,
	CloseIdx:    4,
	LowIdx:      34,
	HighIdx:     33,
	CapacityIdx: idx(45),
	PEIdx:       idx(39),
	PBIdx:       idx(46),
}

// SchemaFor selects a provider by its --data flag value, case-insensitive.
// An empty name selects Tencent, the default data source.
func SchemaFor(name string) (Schema, error) {
	switch strings.ToLower(name) {
	case "", "tencent":
		return Tencent, nil
	case "sina":
		return Sina, nil
	default:
		return Schema{}, fmt.Errorf("unknown data provider %q, want sina or tencent", name)
	}
}
