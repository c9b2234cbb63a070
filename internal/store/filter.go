package store

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// FilterOptions configures the filter pipeline. Filters apply in a fixed
// order: base visibility, exclude prefixes, contain prefixes, grep
// keywords, remove keywords, star bounds, margin eligibility.
type FilterOptions struct {
	// Base visibility selectors, priority All > Hold > Ignore > watch list.
	All    bool
	Hold   bool
	Ignore bool

	// Comma separated code prefixes.
	Exclude string
	Contain string

	// Comma separated keywords, matched case-insensitively as regexps.
	// Grep matches comment, name or code; Remove matches comment or name.
	Grep   string
	Remove string

	// Inclusive bounds on floor(star). Nil disables the bound.
	Above *int
	Under *int

	// Margin keeps only codes present in the set. Nil disables the filter.
	Margin map[string]bool
}

// Filter applies the configured pipeline to the full symbol list and
// returns the working subset in the store's original order. A duplicate
// code in the input fails fast before any filtering.
func Filter(syms []Symbol, opt FilterOptions) ([]Symbol, error) {
	if err := CheckDuplicates(syms); err != nil {
		return nil, err
	}

	out := make([]Symbol, len(syms))
	copy(out, syms)

	switch {
	case opt.All:
		// Base filter disabled.
	case opt.Hold:
		out = keep(out, func(s Symbol) bool { return s.Hold })
	case opt.Ignore:
		out = keep(out, func(s Symbol) bool { return !s.Watch })
	default:
		out = keep(out, func(s Symbol) bool { return s.Watch })
	}

	if opt.Exclude != "" {
		prefixes := splitList(opt.Exclude)
		out = keep(out, func(s Symbol) bool { return !hasAnyPrefix(s.Code, prefixes) })
	}
	if opt.Contain != "" {
		prefixes := splitList(opt.Contain)
		out = keep(out, func(s Symbol) bool { return hasAnyPrefix(s.Code, prefixes) })
	}

	if opt.Grep != "" {
		res, err := compileKeywords(opt.Grep)
		if err != nil {
			return nil, err
		}
		out = keep(out, func(s Symbol) bool {
			return matchAny(res, s.Comment, s.Name, s.Code)
		})
	}
	if opt.Remove != "" {
		res, err := compileKeywords(opt.Remove)
		if err != nil {
			return nil, err
		}
		out = keep(out, func(s Symbol) bool {
			return !matchAny(res, s.Comment, s.Name)
		})
	}

	if opt.Above != nil {
		out = keep(out, func(s Symbol) bool { return int(math.Floor(s.Star)) >= *opt.Above })
	}
	if opt.Under != nil {
		out = keep(out, func(s Symbol) bool { return int(math.Floor(s.Star)) <= *opt.Under })
	}

	if opt.Margin != nil {
		out = keep(out, func(s Symbol) bool { return opt.Margin[s.Code] })
	}

	return out, nil
}

func keep(syms []Symbol, pred func(Symbol) bool) []Symbol {
	out := syms[:0]
	for _, s := range syms {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// splitList splits a comma separated option value, accepting the
// fullwidth comma users on a Chinese input method tend to type.
func splitList(v string) []string {
	v = strings.ReplaceAll(v, "，", ",")
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func compileKeywords(v string) ([]*regexp.Regexp, error) {
	kws := splitList(v)
	res := make([]*regexp.Regexp, 0, len(kws))
	for _, kw := range kws {
		re, err := regexp.Compile("(?i)" + kw)
		if err != nil {
			return nil, fmt.Errorf("invalid keyword %q: %w", kw, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// matchAny reports whether any keyword matches any of the fields. The
// first keyword that matches decides the record; remaining keywords are
// not scanned.
func matchAny(res []*regexp.Regexp, fields ...string) bool {
	for _, re := range res {
		for _, f := range fields {
			if re.MatchString(f) {
				return true
			}
		}
	}
	return false
}
