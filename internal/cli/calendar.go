package cli

import (
	"context"
	"fmt"

	"star-go/internal/calendar"
	"star-go/internal/render"
)

// runCal prints the finance calendar of the coming weeks.
func (a *App) runCal(ctx context.Context) error {
	start := a.now()

	client := calendar.NewClient(a.logger)
	events, err := client.Fetch(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{e.Time, e.Title, e.RelatedStocks})
	}

	fmt.Fprintln(a.out, render.Title("\n财经日历\n"))
	fmt.Fprintln(a.out, render.Table([]string{"时间", "事件", "相关个股"}, rows))
	fmt.Fprintln(a.out, render.Footer(fmt.Sprintf("Done! 总计 %d 条, 操作耗时: %s", len(events), elapsed(start))))
	return nil
}
