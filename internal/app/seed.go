package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/newsfinder/internal/cli"
	"horse.fit/newsfinder/internal/seed"
)

func runSeed(args []string) int {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	path := fs.String("path", "testdata/fixtures", "Fixture file or directory of .json fixtures")
	recursive := fs.Bool("recursive", true, "Recursively scan subdirectories")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	files, err := collectFixtureFiles(strings.TrimSpace(*path), *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed setup failed: %v\n", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Seed failed: no .json files found under %s\n", strings.TrimSpace(*path))
		return 1
	}

	fixtures := make([]*seed.Fixture, 0, len(files))
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed failed: read %s: %v\n", file, err)
			return 1
		}
		fixture, err := seed.ParseFixture(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed failed: %s: %v\n", file, err)
			return 1
		}
		fixtures = append(fixtures, fixture)
	}

	cfg, logger, code := loadRuntime(envLoader)
	if code != 0 {
		return code
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	pool, err := connectWithRetry(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("seed failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	importer := seed.NewImporter(pool, logger)
	var total seed.ImportResult
	for i, fixture := range fixtures {
		result, err := importer.Import(ctx, fixture)
		if err != nil {
			logger.Error().Err(err).Str("file", files[i]).Msg("seed import failed")
			fmt.Fprintf(os.Stderr, "Seed failed: %s: %v\n", files[i], err)
			return 1
		}
		total.Sources += result.Sources
		total.Inserted += result.Inserted
		total.Updated += result.Updated
	}

	fmt.Printf(
		"seed files=%d sources=%d inserted=%d updated=%d\n",
		len(files),
		total.Sources,
		total.Inserted,
		total.Updated,
	)
	return 0
}
