package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/raidtrack/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config path (default ~/.config/raidtrack/config.toml)")
	prefsPath := flag.String("prefs", "", "UI preferences path (default ~/.config/raidtrack/prefs.toml)")
	flushOnly := flag.Bool("flush", false, "push queued changes once and exit without the UI")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath}

	if *flushOnly {
		report, err := app.FlushOnce(ctx, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "raidtrack: %v\n", err)
			return 1
		}
		fmt.Printf("flushed %d of %d queued changes\n", report.Succeeded, report.Succeeded+report.Failed)
		if report.Failed > 0 {
			return 2
		}
		return 0
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "raidtrack: %v\n", err)
		return 1
	}
	return 0
}
