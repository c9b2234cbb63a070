package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"star-go/internal/config"
	"star-go/internal/store"
	"star-go/internal/watch"
)

// runWatch starts the live-refreshing quote table for the codes given on
// the command line, or for the symbol store's watch list (held stocks
// with --hold).
func (a *App) runWatch(ctx context.Context) error {
	arg := a.opts.watch

	if arg == watchList {
		codes, err := a.watchListCodes()
		if err != nil {
			return err
		}
		arg = strings.Join(codes, ",")
	}

	codes, err := splitCodes(arg)
	if err != nil {
		return err
	}

	client, err := a.quoteClient()
	if err != nil {
		return err
	}

	w := watch.New(a.logger, client, codes, watch.DefaultInterval, a.out)
	return w.Run(ctx)
}

func (a *App) watchListCodes() ([]string, error) {
	symbolFile, err := config.ResolveSymbolFile(a.opts.file)
	if err != nil {
		return nil, err
	}
	syms, err := store.Load(symbolFile)
	if err != nil {
		return nil, err
	}

	var codes []string
	for _, s := range syms {
		if a.opts.hold && s.Hold {
			codes = append(codes, s.Code)
		} else if !a.opts.hold && s.Watch {
			codes = append(codes, s.Code)
		}
	}
	if len(codes) == 0 {
		return nil, errors.New("the watch list is empty, add symbols to the symbol file first")
	}
	if len(codes) > config.ChunkSize {
		return nil, fmt.Errorf("too many symbols to watch, the watch list has %d and at most %d are supported; narrow it with --hold or unwatch some symbols", len(codes), config.ChunkSize)
	}
	return codes, nil
}
