// Package watch drives the live-refreshing quote table.
package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"star-go/internal/quote"
	"star-go/internal/render"
)

// DefaultInterval is the refresh period of the live table.
const DefaultInterval = 3600 * time.Millisecond

// Source is the quote backend the watcher polls.
type Source interface {
	Fetch(ctx context.Context, codes []string) ([]quote.Quote, []string, error)
}

// Watcher re-renders a quote table for a fixed code set on a timer.
// Refreshes run on the loop goroutine, so a slow request delays the next
// tick instead of overlapping it.
type Watcher struct {
	logger   *zap.Logger
	source   Source
	codes    []string
	interval time.Duration
	out      io.Writer
}

// New creates a watcher over the given codes.
func New(logger *zap.Logger, source Source, codes []string, interval time.Duration, out io.Writer) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		logger:   logger,
		source:   source,
		codes:    codes,
		interval: interval,
		out:      out,
	}
}

// Run paints immediately, then refreshes until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	quotes, notFound, err := w.source.Fetch(ctx, w.codes)
	if err != nil {
		// Keep the last table on screen and try again next tick.
		w.logger.Warn("Quote refresh failed", zap.Error(err))
		return
	}
	for _, code := range notFound {
		w.logger.Warn("Symbol does not exist", zap.String("code", code))
	}

	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			q.Name,
			q.Code,
			render.Price(q.Price),
			render.Price(q.Inc),
			render.Pct(q.IncPct),
		})
	}

	fmt.Fprint(w.out, render.ClearScreen())
	fmt.Fprintln(w.out, render.Table([]string{"公司", "代码", "当前价", "涨跌", "涨跌%"}, rows))
	fmt.Fprintf(w.out, "每 %v 刷新一次，按 Ctrl-C 退出\n", w.interval)
}
