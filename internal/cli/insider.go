package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"star-go/internal/insider"
	"star-go/internal/market"
	"star-go/internal/render"
)

const showDetailTip = "具体交易记录省略，可通过 \"--show-detail\" 参数查看详情..."

// runInsider dispatches the insider trading sub-flows.
func (a *App) runInsider(ctx context.Context) error {
	o := a.opts
	switch {
	case o.latestSz:
		return a.runLatestSZ(ctx)
	case o.latestSh:
		return a.runLatestSH(ctx)
	case o.topBuy:
		return a.runTopList(ctx, insider.TopBuyValue)
	case o.topSell:
		return a.runTopList(ctx, insider.TopSellValue)
	case o.insider == "" || o.insider == insiderAll:
		return a.runMiscInsider(ctx)
	default:
		return a.runInsiderByCode(ctx)
	}
}

// runInsiderByCode queries the exchange disclosure endpoint for each code
// in turn. One code's failure does not abort its siblings.
func (a *App) runInsiderByCode(ctx context.Context) error {
	start := a.now()
	o := a.opts

	codes, err := splitCodes(o.insider)
	if err != nil {
		return err
	}
	dr, err := insider.ResolveWindow(o.from, o.to, o.span, a.now())
	if err != nil {
		return err
	}

	szse := insider.NewSZSEClient(a.logger)
	sse := insider.NewSSEClient(a.logger)
	page := o.page
	if page < 1 {
		page = 1
	}

	for _, code := range codes {
		if err := a.queryOneCode(ctx, szse, sse, code, dr, page); err != nil {
			a.logger.Error("Insider query failed", zap.String("code", code), zap.Error(err))
			fmt.Fprintf(a.out, "查询失败，证券代码：%s, 错误：%v\n", code, err)
		}
	}

	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf("ALL DONE! 操作耗时: %s", elapsed(start))))
	return nil
}

func (a *App) queryOneCode(ctx context.Context, szse *insider.SZSEClient, sse *insider.SSEClient, code string, dr insider.DateRange, page int) error {
	mkt, ok := market.Resolve(code)
	if !ok {
		return fmt.Errorf("unknown market for code %q", code)
	}

	var (
		tradings []insider.Trading
		pgInfo   insider.PageInfo
		err      error
	)
	switch mkt {
	case market.Shenzhen:
		tradings, pgInfo, err = szse.Query(ctx, code, dr, page)
	case market.Shanghai:
		tradings, err = sse.Query(ctx, code, dr)
		pgInfo = insider.PageInfo{TotalPages: 1, TotalRows: len(tradings)}
	}
	if err != nil {
		return err
	}

	from, to := dr.Display()
	fmt.Fprintln(a.out, render.Title(fmt.Sprintf("\n董监高近期交易信息，证券代码：%s, 从: %s, 到: %s", code, from, to)))

	if len(tradings) == 0 {
		fmt.Fprintln(a.out, "在当前时间范围内无董监高交易记录！")
		return nil
	}

	a.printSummary(insider.Summarize(tradings))
	fmt.Fprintln(a.out, render.Title("\n交易详情:"))
	a.printTradings(tradings)

	if mkt == market.Shenzhen {
		fromIdx := (page-1)*insider.PageSize + 1
		fmt.Fprintln(a.out, render.Footer(fmt.Sprintf(
			"总记录: %d, 当前: %d-%d, 页码: %d / %d",
			pgInfo.TotalRows, fromIdx, fromIdx+len(tradings)-1, page, pgInfo.TotalPages)))
	} else {
		fmt.Fprintln(a.out, render.Footer(fmt.Sprintf("总记录: %d", len(tradings))))
	}
	return nil
}

// runLatestSZ shows recent insider activity across the Shenzhen market,
// summarized per company.
func (a *App) runLatestSZ(ctx context.Context) error {
	start := a.now()

	dr := insider.ResolveLatest(a.opts.span, a.now())
	page := a.opts.page
	if page < 1 {
		page = 1
	}

	szse := insider.NewSZSEClient(a.logger)
	tradings, pgInfo, err := szse.Latest(ctx, dr, page)
	if err != nil {
		return err
	}

	a.printCompanySummaries(dr, tradings)

	fmt.Fprintln(a.out, render.Footer(szLatestFooter(elapsed(start), pgInfo, page, len(tradings))))
	return nil
}

// szLatestFooter builds the closing line of the latest-SZ flow. An empty
// page drops the row range; "当前: 1-0" would mislead.
func szLatestFooter(took string, pg insider.PageInfo, page, rows int) string {
	if rows == 0 {
		return fmt.Sprintf("SZ Query Done! 操作耗时: %s, 总记录: %d", took, pg.TotalRows)
	}
	fromIdx := (page-1)*insider.PageSize + 1
	return fmt.Sprintf("SZ Query Done! 操作耗时: %s, 总记录: %d, 当前: %d-%d, 页码: %d / %d",
		took, pg.TotalRows, fromIdx, fromIdx+rows-1, page, pg.TotalPages)
}

// runLatestSH is the Shanghai counterpart of runLatestSZ.
func (a *App) runLatestSH(ctx context.Context) error {
	start := a.now()

	dr := insider.ResolveLatest(a.opts.span, a.now())

	sse := insider.NewSSEClient(a.logger)
	tradings, err := sse.Query(ctx, "", dr)
	if err != nil {
		return err
	}

	a.printCompanySummaries(dr, tradings)

	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf(
		"SH Query Done! 操作耗时: %s, 总记录: %d", elapsed(start), len(tradings))))
	return nil
}

// runMiscInsider queries the aggregator across codes and markets.
func (a *App) runMiscInsider(ctx context.Context) error {
	start := a.now()
	o := a.opts

	q := insider.MiscQuery{
		Code:   strings.ReplaceAll(o.code, "，", ","),
		Market: strings.ReplaceAll(o.market, "，", ","),
		Span:   o.span,
		From:   o.from,
		To:     o.to,
		Page:   o.page,
	}
	if a.flags.Changed("limit") {
		q.Limit = o.limit
	}

	agg := insider.NewAggregatorClient(a.logger)
	res, err := agg.Query(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, render.Title(fmt.Sprintf("\n董监高近期交易信息汇总, 从: %s, 到: %s\n", res.From, res.To)))
	a.printSummaries(insider.SummarizeByCompany(res.Tradings))

	if a.opts.showDetail {
		fmt.Fprintln(a.out, render.Title("\n交易详情:"))
		a.printTradings(res.Tradings)
	} else {
		fmt.Fprintln(a.out, showDetailTip)
	}

	fromIdx := (res.Page-1)*res.Limit + 1
	totalPages := (res.Total + res.Limit - 1) / res.Limit
	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf(
		"Done! 操作耗时: %s, 总记录: %d, 当前: %d-%d, 页码: %d / %d",
		elapsed(start), res.Total, fromIdx, fromIdx+len(res.Tradings)-1, res.Page, totalPages)))
	return nil
}

// runTopList shows the aggregator's pre-ranked top buyers or sellers; the
// rows arrive ordered, only the units are formatted here.
func (a *App) runTopList(ctx context.Context, order insider.TopOrder) error {
	start := a.now()

	span := a.opts.span
	if span == "" {
		span = "3m"
	}

	agg := insider.NewAggregatorClient(a.logger)
	res, err := agg.TopList(ctx, span, order)
	if err != nil {
		return err
	}

	dr := insider.DateRange{From: a.now().AddDate(0, -res.SpanMonths, 0), To: a.now()}
	from, to := dr.Display()
	fmt.Fprintln(a.out, render.Title(fmt.Sprintf("\n董监高近期交易排行榜, 从: %s, 到: %s\n", from, to)))

	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, []string{
			strings.ReplaceAll(e.CompanyName, " ", ""),
			e.CompanyCode,
			render.Money(e.MeanPrice),
			render.Shares(e.Shares),
			render.Money(e.TotalValue),
		})
	}
	fmt.Fprintln(a.out, render.Table([]string{"公司简称", "证券代码", "交易均价", "交易股数", "交易总额"}, rows))

	side := "买入总额前"
	if order == insider.TopSellValue {
		side = "卖出总额前"
	}
	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf(
		"Done! 操作耗时: %s, 最近 %d 月%s %d", elapsed(start), res.SpanMonths, side, len(res.Entries))))
	return nil
}

func (a *App) printCompanySummaries(dr insider.DateRange, tradings []insider.Trading) {
	from, to := dr.Display()
	fmt.Fprintln(a.out, render.Title(fmt.Sprintf("\n董监高近期交易信息汇总, 从: %s, 到: %s\n", from, to)))

	if len(tradings) == 0 {
		fmt.Fprintln(a.out, "在当前时间范围内无董监高交易记录！")
		return
	}
	a.printSummaries(insider.SummarizeByCompany(tradings))

	if a.opts.showDetail {
		fmt.Fprintln(a.out, render.Title("\n交易详情:"))
		a.printTradings(tradings)
	} else {
		fmt.Fprintln(a.out, showDetailTip)
	}
}

func (a *App) printSummaries(summaries []insider.CompanySummary) {
	if a.flags.Changed("limit") && a.opts.limit > 0 && a.opts.limit < len(summaries) {
		summaries = summaries[:a.opts.limit]
	}
	for _, s := range summaries {
		fmt.Fprintf(a.out, "  净增持股数: %-18s 净增持额: %-18s 公    司: %s\n",
			render.Shares(s.NetBuyShares), render.Money(s.NetBuyCost), s.Company)
		fmt.Fprintf(a.out, "  总增持股数: %-18s 增持均价: %-18s 总增持额: %s\n",
			render.Shares(s.BuyShares), render.AvgPrice(s.BuyAvgPrice()), render.Money(s.BuyCost))
		fmt.Fprintf(a.out, "  总减持股数: %-18s 减持均价: %-18s 总减持额: %s\n",
			render.Shares(s.SellShares), render.AvgPrice(s.SellAvgPrice()), render.Money(s.SellProceeds))
		fmt.Fprintln(a.out, render.Rule(93))
	}
}

func (a *App) printSummary(s insider.Summary) {
	fmt.Fprintf(a.out, "净增持股数: %-18s 净增持额: %s\n", render.Shares(s.NetBuyShares), render.Money(s.NetBuyCost))
	fmt.Fprintf(a.out, "总增持股数: %-18s 增持均价: %-18s 总增持额: %s\n",
		render.Shares(s.BuyShares), render.AvgPrice(s.BuyAvgPrice()), render.Money(s.BuyCost))
	fmt.Fprintf(a.out, "总减持股数: %-18s 减持均价: %-18s 总减持额: %s\n",
		render.Shares(s.SellShares), render.AvgPrice(s.SellAvgPrice()), render.Money(s.SellProceeds))
}

func (a *App) printTradings(tradings []insider.Trading) {
	headers := []string{"证券简称", "代码", "交易人", "变动股数", "均价", "结存股数", "变动日期", "填报日期", "变动原因", "职务"}
	rows := make([][]string, 0, len(tradings))
	for _, t := range tradings {
		formDate := t.FormDate
		if formDate == "" {
			formDate = "-"
		}
		rows = append(rows, []string{
			strings.ReplaceAll(t.CompanyName, " ", ""),
			t.CompanyCode,
			strings.ReplaceAll(t.PersonName, " ", ""),
			render.Shares(t.ChangeShares),
			render.Price(t.AvgPrice),
			render.Shares(t.HoldingAfter),
			t.ChangeDate,
			formDate,
			t.Reason,
			t.Role,
		})
	}
	fmt.Fprintln(a.out, render.Table(headers, rows))
}
