package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"horse.fit/newsfinder/internal/cli"
	"horse.fit/newsfinder/internal/httpapi"
	"horse.fit/newsfinder/internal/similarity"
)

func runScheduler(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	withHTTP := fs.Bool("http", false, "Also serve the read API on HTTP_ADDR")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, code := loadRuntime(envLoader)
	if code != 0 {
		return code
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	pool, err := connectWithRetry(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("run failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	engine, err := newEngine(pool, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Similarity setup failed: %v\n", err)
		return 1
	}
	scheduler := similarity.NewScheduler(engine, logger, similarity.SchedulerOptions{
		Interval: cfg.SimilarityInterval,
		Poll:     cfg.SimilarityPoll,
	})

	logger.Info().
		Dur("interval", cfg.SimilarityInterval).
		Dur("poll", cfg.SimilarityPoll).
		Bool("http", *withHTTP).
		Msg("similarity scheduler started")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return scheduler.Run(groupCtx)
	})
	if *withHTTP {
		server := httpapi.NewServer(pool, logger, httpapi.Options{Addr: cfg.HTTPAddr})
		group.Go(func() error {
			return server.Start(groupCtx)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("similarity scheduler stopped with error")
		fmt.Fprintf(os.Stderr, "Scheduler failed: %v\n", err)
		return 1
	}

	logger.Info().Msg("similarity scheduler stopped")
	return 0
}
