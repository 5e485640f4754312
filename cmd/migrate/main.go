// Command migrate runs goose commands against the cart database.
//
//	migrate up
//	migrate status
//	migrate down-to 20260301120000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"froid-storefront/internal/config"
	"froid-storefront/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	timeout := flag.Duration("timeout", 2*time.Minute, "maximum time allowed for the command")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <up|down|down-to|redo|reset|status|version> [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("missing migration command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	return database.RunMigrations(ctx, pool, logger, flag.Arg(0), flag.Args()[1:]...)
}
