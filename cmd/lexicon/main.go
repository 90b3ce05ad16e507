// Command lexicon is the CLI wrapper around the core engine: it parses
// flags (§6), builds the index from a corpus and/or a crawled seed,
// answers queries, and writes the three JSON outputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dchatterjee/lexicon/internal/config"
	"github.com/dchatterjee/lexicon/internal/corpus"
	"github.com/dchatterjee/lexicon/internal/index"
	"github.com/dchatterjee/lexicon/internal/jsonout"
	"github.com/dchatterjee/lexicon/internal/logging"
	"github.com/dchatterjee/lexicon/internal/pool"
	"github.com/dchatterjee/lexicon/internal/query"
	"github.com/dchatterjee/lexicon/internal/web"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main's body, pulled out from main itself so tests can drive the
// whole CLI surface in-process — against real temp-dir fixtures, through
// the real flag parser — without exec'ing a built binary. It returns the
// process exit code instead of calling os.Exit directly.
func run(args []string, stdout, stderr io.Writer) int {
	start := time.Now()

	envPath := peekEnvFlag(args)
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(stderr, "lexicon: unable to load env file %s: %v\n", envPath, err)
		}
	}

	cfg, err := config.ParseFlags(args)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "lexicon: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "lexicon: invalid configuration: %v\n", err)
		return 2
	}

	logger := logging.New(stderr, 1000)
	defer logger.Close()

	shared := index.NewShared()
	workers := pool.New(cfg.Threads, cfg.Threads*100, logger)

	if cfg.TextPath != "" {
		ing := &corpus.Ingester{Shared: shared, Pool: workers, Logger: logger}
		if err := ing.Build(cfg.TextPath); err != nil {
			logger.Errorf("corpus build failed: %v", err)
		}
	}

	if cfg.HTMLSeed != "" {
		crawlWeb(cfg, shared, workers, logger)
	}

	workers.Finish()

	if err := writeCounts(cfg.CountsPath, shared); err != nil {
		logger.Errorf("unable to write counts: %v", err)
	}
	if err := writeIndex(cfg.IndexPath, shared); err != nil {
		logger.Errorf("unable to write index: %v", err)
	}

	if cfg.QueryPath != "" {
		runQueries(cfg, shared, workers, logger)
	}

	workers.Shutdown()
	workers.Join()

	fmt.Fprintf(stdout, "%.3f\n", time.Since(start).Seconds())
	return 0
}

func crawlWeb(cfg *config.CLIConfig, shared *index.SharedIndex, workers *pool.Pool, logger *logging.Logger) {
	fetcher := web.NewHTTPFetcher(3, 10*time.Second)

	var guard *web.RobotsGuard
	if cfg.RespectRobots {
		guard = web.NewRobotsGuard(fetcher, "lexicon-crawler")
	}

	var limiter *web.HostLimiters
	if cfg.CrawlRate > 0 {
		limiter = web.NewHostLimiters(float64(cfg.CrawlRate))
		defer limiter.Stop()
	}

	ing := &web.Ingester{
		Shared:   shared,
		Pool:     workers,
		Fetcher:  fetcher,
		Links:    web.HTMLLinkExtractor{},
		Clean:    web.HTMLCleaner{},
		Robots:   guard,
		Limiter:  limiter,
		Logger:   logger,
		MaxPages: cfg.CrawlMax,
	}
	if err := ing.Crawl(context.Background(), cfg.HTMLSeed); err != nil {
		logger.Errorf("crawl failed: %v", err)
	}
}

func runQueries(cfg *config.CLIConfig, shared *index.SharedIndex, workers *pool.Pool, logger *logging.Logger) {
	proc := query.New(shared, workers)
	if err := proc.ProcessFile(cfg.QueryPath, cfg.Partial); err != nil {
		logger.Errorf("unable to read query file: %v", err)
		return
	}
	workers.Finish()

	results := toQueryResults(proc.Results(cfg.Partial))
	if err := writeResults(cfg.ResultsPath, results); err != nil {
		logger.Errorf("unable to write results: %v", err)
	}
}

func toQueryResults(qrs []query.QueryResult) []jsonout.QueryResults {
	out := make([]jsonout.QueryResults, 0, len(qrs))
	for _, qr := range qrs {
		out = append(out, jsonout.QueryResults{Key: qr.Key, Results: qr.Results})
	}
	return out
}

func writeCounts(path string, shared *index.SharedIndex) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jsonout.WriteCounts(f, shared.Counts())
}

func writeIndex(path string, shared *index.SharedIndex) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jsonout.WriteIndex(f, shared.Snapshot())
}

func writeResults(path string, results []jsonout.QueryResults) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jsonout.WriteResults(f, results)
}

// peekEnvFlag scans args for -env/--env ahead of the main flag parse, so
// the .env file is loaded into the process environment before the flags
// are parsed. The flag parser itself reads no environment variable, so
// the file's values do not change any flag's default.
func peekEnvFlag(args []string) string {
	for i, arg := range args {
		for _, prefix := range []string{"-env=", "--env="} {
			if strings.HasPrefix(arg, prefix) {
				return arg[len(prefix):]
			}
		}
		if (arg == "-env" || arg == "--env") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
