package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "similarity", "run-once":
		return runSimilarity(args[1:])
	case "run":
		return runScheduler(args[1:])
	case "serve":
		return runServe(args[1:])
	case "seed":
		return runSeed(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "prune":
		return runPrune(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "newsfinder CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  newsfinder <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health      Verify database connectivity and show the dirty flag")
	fmt.Fprintln(os.Stderr, "  similarity  Run one similarity cycle (forced by default)")
	fmt.Fprintln(os.Stderr, "  run-once    Alias for similarity")
	fmt.Fprintln(os.Stderr, "  run         Run the similarity scheduler, optionally with the HTTP API")
	fmt.Fprintln(os.Stderr, "  serve       Start the read-only HTTP API")
	fmt.Fprintln(os.Stderr, "  seed        Import sources and articles from fixture files")
	fmt.Fprintln(os.Stderr, "  validate    Validate fixture files against the fixture schema")
	fmt.Fprintln(os.Stderr, "  prune       Delete articles older than the retention window")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"newsfinder <command> -h\" for command-specific flags.")
}
