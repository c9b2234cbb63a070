package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"star-go/internal/cli"
	"star-go/internal/config"
	"star-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		cancel()
	}()

	root := cli.NewRootCommand(log, cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
