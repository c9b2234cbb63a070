package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"star-go/internal/config"
	"star-go/internal/quote"
	"star-go/internal/render"
	"star-go/internal/store"
)

// marginFile holds the margin-eligible code set, next to the symbol file.
const marginFile = "rzrq.json"

// traceRow is a symbol enriched with its live quote and the derived
// trading signals used for filtering and sorting.
type traceRow struct {
	quote.Quote

	Target    float64
	Cheap     float64
	Expensive float64
	Star      float64
	Comment   string

	// Pct is the upside to the target price; BDiff and SDiff measure the
	// distance of the current price from the buy and sell trigger prices,
	// as percentages of the current price.
	Pct   float64
	BDiff float64
	SDiff float64
}

// runTrace loads the symbol store, applies the filter pipeline, enriches
// the survivors with live quotes and prints the sorted, paginated table.
func (a *App) runTrace(ctx context.Context) error {
	start := a.now()
	o := a.opts

	symbolFile, err := config.ResolveSymbolFile(o.file)
	if err != nil {
		return err
	}
	syms, err := store.Load(symbolFile)
	if err != nil {
		return err
	}

	filterOpts := store.FilterOptions{
		All:     o.all,
		Hold:    o.hold,
		Ignore:  o.ignore,
		Exclude: o.exclude,
		Contain: o.contain,
		Grep:    o.grep,
		Remove:  o.remove,
		Above:   a.intOpt("above", o.above),
		Under:   a.intOpt("under", o.under),
	}
	if o.margin {
		margin, err := store.LoadMarginSet(filepath.Join(filepath.Dir(symbolFile), marginFile))
		if err != nil {
			return err
		}
		filterOpts.Margin = margin
	}

	filtered, err := store.Filter(syms, filterOpts)
	if err != nil {
		return err
	}

	client, err := a.quoteClient()
	if err != nil {
		return err
	}

	var rows []traceRow
	for _, batch := range chunkSymbols(filtered, config.ChunkSize) {
		codes := make([]string, len(batch))
		bySym := make(map[string]store.Symbol, len(batch))
		for i, s := range batch {
			codes[i] = s.Code
			bySym[s.Code] = s
		}

		quotes, notFound, err := client.Fetch(ctx, codes)
		if err != nil {
			return fmt.Errorf("quote query failed: %w", err)
		}
		for _, code := range notFound {
			a.logger.Warn("Symbol does not exist", zap.String("code", code))
		}
		for _, q := range quotes {
			rows = append(rows, enrich(bySym[q.Code], q))
		}
	}

	rows = a.applyPriceFilters(rows)
	a.sortRows(rows)

	total := len(rows)
	page, fromIdx := a.paginate(rows)

	a.printTraceTable(page)
	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf(
		"Done! 总计 %d 只股票, 当前显示第 %d - %d 只, 操作耗时: %s",
		total, fromIdx, fromIdx+len(page), elapsed(start))))
	return nil
}

func chunkSymbols(syms []store.Symbol, size int) [][]store.Symbol {
	var chunks [][]store.Symbol
	for len(syms) > size {
		chunks = append(chunks, syms[:size])
		syms = syms[size:]
	}
	if len(syms) > 0 {
		chunks = append(chunks, syms)
	}
	return chunks
}

func enrich(s store.Symbol, q quote.Quote) traceRow {
	return traceRow{
		Quote:     q,
		Target:    s.Target,
		Cheap:     s.Cheap,
		Expensive: s.Expensive,
		Star:      s.Star,
		Comment:   s.Comment,
		Pct:       (s.Target - q.Price) / q.Price * 100,
		BDiff:     100 * (q.Price - s.Cheap) / q.Price,
		SDiff:     100 * (q.Price - s.Expensive) / q.Price,
	}
}

// applyPriceFilters cuts the enriched rows down by the quote-dependent
// thresholds, which can only run after the quotes are in.
func (a *App) applyPriceFilters(rows []traceRow) []traceRow {
	o := a.opts

	keep := func(pred func(traceRow) bool) {
		out := rows[:0]
		for _, r := range rows {
			if pred(r) {
				out = append(out, r)
			}
		}
		rows = out
	}

	if v := a.intOpt("lte", o.lte); v != nil {
		keep(func(r traceRow) bool { return r.Pct <= float64(*v) })
	}
	if v := a.intOpt("gte", o.gte); v != nil {
		keep(func(r traceRow) bool { return r.Pct >= float64(*v) })
	}
	if v := a.intOpt("lteb", o.lteb); v != nil {
		keep(func(r traceRow) bool { return r.BDiff <= float64(*v) })
	}
	if v := a.intOpt("gtes", o.gtes); v != nil {
		keep(func(r traceRow) bool { return r.SDiff >= float64(*v) })
	}
	return rows
}

// sortRows orders the rows by the selected field, descending unless
// --reverse asks for ascending. Unknown sort names fall back to the
// upside percentage. The sort is stable so equal keys keep store order.
func (a *App) sortRows(rows []traceRow) {
	key := a.opts.sort

	if key == "code" {
		sort.SliceStable(rows, func(i, j int) bool {
			if a.opts.reverse {
				return rows[i].Code < rows[j].Code
			}
			return rows[i].Code > rows[j].Code
		})
		return
	}

	val := func(r traceRow) float64 {
		switch key {
		case "star":
			return r.Star
		case "price":
			return r.Price
		case "incp":
			return r.IncPct
		case "bdiff":
			return r.BDiff
		case "sdiff":
			return r.SDiff
		case "capacity":
			return optVal(r.Capacity)
		case "pe":
			return optVal(r.PE)
		case "pb":
			return optVal(r.PB)
		default: // "targetp" and the default sort
			return r.Pct
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if a.opts.reverse {
			return val(rows[i]) < val(rows[j])
		}
		return val(rows[i]) > val(rows[j])
	})
}

func optVal(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// paginate slices out the requested page and returns it with the index of
// its first row. An out-of-range page clamps to the last one; --all shows
// everything.
func (a *App) paginate(rows []traceRow) ([]traceRow, int) {
	if a.opts.all || len(rows) == 0 {
		return rows, 0
	}

	limit := a.opts.limit
	if limit < 1 {
		limit = config.DefaultLimit
	}
	lastPage := (len(rows) - 1) / limit

	page := a.opts.page
	if page < 0 {
		page = 0
	}
	if page > lastPage {
		page = lastPage
	}

	from := page * limit
	to := from + limit
	if to > len(rows) {
		to = len(rows)
	}
	return rows[from:to], from
}

func (a *App) printTraceTable(rows []traceRow) {
	withExtras := len(rows) > 0 && rows[0].Capacity != nil

	headers := []string{"公司", "代码", "当前价", "涨跌%", "买点", "卖点", "目标价", "上涨空间%", "星级"}
	if withExtras {
		headers = append(headers, "总市值", "P/E", "P/B")
	}
	headers = append(headers, "备注")

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{
			r.Name,
			r.Code,
			render.Price(r.Price),
			render.Pct(r.IncPct),
			render.Price(r.Cheap),
			render.Price(r.Expensive),
			render.Price(r.Target),
			render.Pct(r.Pct),
			render.Star(r.Star),
		}
		if withExtras {
			row = append(row,
				render.Opt(r.Capacity, render.Price),
				render.Opt(r.PE, render.Price),
				render.Opt(r.PB, render.Price),
			)
		}
		row = append(row, r.Comment)
		data = append(data, row)
	}
	fmt.Fprintln(a.out, render.Table(headers, data))
}
