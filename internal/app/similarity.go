package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/cli"
	"horse.fit/newsfinder/internal/config"
	"horse.fit/newsfinder/internal/db"
	"horse.fit/newsfinder/internal/similarity"
	"horse.fit/newsfinder/internal/textnorm"
)

func runSimilarity(args []string) int {
	fs := flag.NewFlagSet("similarity", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	force := fs.Bool("force", true, "Run even when articles_modified is false")

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
		logger.Error().Err(err).Msg("similarity failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	engine, err := newEngine(pool, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Similarity setup failed: %v\n", err)
		return 1
	}

	result, err := engine.RunCycle(ctx, *force)
	if err != nil {
		logger.Error().Err(err).Msg("similarity cycle failed")
		fmt.Fprintf(os.Stderr, "Similarity cycle failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"similarity skipped=%t articles=%d matches=%d same_source=%d pairs_written=%d duration=%s run_uuid=%s\n",
		result.Skipped,
		result.Articles,
		result.Matches,
		result.SameSourceMatches,
		result.PairsWritten,
		result.Duration,
		result.RunUUID,
	)
	return 0
}

func newEngine(pool *db.Pool, cfg *config.Config, logger zerolog.Logger) (*similarity.Engine, error) {
	normalizer, err := textnorm.Default()
	if err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	return similarity.NewEngine(pool, normalizer, logger, similarity.Options{
		ConnectAttempts: cfg.DBConnectAttempts,
		RetryDelay:      cfg.DBRetryDelay,
		TitleThreshold:  cfg.SimilarityTitleThreshold,
	}), nil
}
