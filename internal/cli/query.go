package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"star-go/internal/render"
)

// runQuery fetches one batch of quotes for the codes given on the command
// line and prints them as a table.
func (a *App) runQuery(ctx context.Context, arg string) error {
	start := a.now()

	codes, err := splitCodes(arg)
	if err != nil {
		return err
	}

	client, err := a.quoteClient()
	if err != nil {
		return err
	}

	quotes, notFound, err := client.Fetch(ctx, codes)
	if err != nil {
		return fmt.Errorf("quote query failed: %w", err)
	}
	for _, code := range notFound {
		a.logger.Warn("Symbol does not exist", zap.String("code", code))
	}

	withExtras := len(quotes) > 0 && quotes[0].Capacity != nil

	headers := []string{"公司", "代码", "当前价", "涨跌", "涨跌%", "最低", "最高", "开盘价", "上次收盘"}
	if withExtras {
		headers = append(headers, "总市值", "P/E", "P/B")
	}

	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		row := []string{
			q.Name,
			q.Code,
			render.Price(q.Price),
			render.Price(q.Inc),
			render.Pct(q.IncPct),
			render.Price(q.Low),
			render.Price(q.High),
			render.Price(q.Open),
			render.Price(q.Close),
		}
		if withExtras {
			row = append(row,
				render.Opt(q.Capacity, render.Price),
				render.Opt(q.PE, render.Price),
				render.Opt(q.PB, render.Price),
			)
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(a.out, render.Table(headers, rows))
	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf("Done! 总计查询 %d 只股票, 操作耗时: %s", len(quotes), elapsed(start))))
	return nil
}
