package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/newsfinder/internal/cli"
	"horse.fit/newsfinder/internal/db"
	"horse.fit/newsfinder/internal/globaltime"
)

func runPrune(args []string) int {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	maxAge := fs.Duration("max-age", 0, "Delete articles published longer ago than this (defaults to RETENTION_MAX_AGE)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *maxAge < 0 {
		fmt.Fprintln(os.Stderr, "--max-age must be >= 0")
		return 2
	}

	cfg, logger, code := loadRuntime(envLoader)
	if code != 0 {
		return code
	}

	retention := cfg.RetentionMaxAge
	if *maxAge > 0 {
		retention = *maxAge
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	pool, err := connectWithRetry(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("prune failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	cutoff := retentionCutoff(globaltime.UTC(), retention)
	deleted, err := pool.DeleteArticlesPublishedBefore(ctx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("prune failed")
		fmt.Fprintf(os.Stderr, "Prune failed: %v\n", err)
		return 1
	}
	if deleted > 0 {
		if err := pool.SetFlag(ctx, db.FlagArticlesModified, true); err != nil {
			logger.Error().Err(err).Msg("prune failed to raise articles_modified")
			fmt.Fprintf(os.Stderr, "Prune failed: %v\n", err)
			return 1
		}
	}

	logger.Info().
		Time("cutoff", cutoff).
		Int64("deleted", deleted).
		Msg("prune completed")
	fmt.Printf("prune cutoff=%s deleted=%d\n", cutoff.Format(time.RFC3339), deleted)
	return 0
}

func retentionCutoff(now time.Time, maxAge time.Duration) time.Time {
	return now.UTC().Add(-maxAge)
}
