package config

import (
	"flag"
)

// CLIConfig mirrors the CLI surface in §6: text/query corpora, output
// paths, thread count, and the optional web-ingester seed plus its
// politeness knobs. Struct tags drive the reflection-based validator in
// validator.go, repurposed here to validate CLI-derived values instead
// of a JSON file.
type CLIConfig struct {
	TextPath  string
	QueryPath string
	Partial   bool

	CountsPath  string `validate:"required"`
	IndexPath   string `validate:"required"`
	ResultsPath string `validate:"required"`

	Threads int `validate:"min=1,max=10000"`

	HTMLSeed      string `validate:"url"`
	CrawlMax      int    `validate:"min=1,max=1000000"`
	CrawlRate     int
	RespectRobots bool

	EnvPath string
}

// Default returns the configuration that matches the CLI defaults listed
// in §6: 5 worker threads, counts.json/index.json/results.json, and a
// crawl cap of 1 URL (the seed alone) when -html is given without -crawl.
func Default() *CLIConfig {
	return &CLIConfig{
		CountsPath:    "counts.json",
		IndexPath:     "index.json",
		ResultsPath:   "results.json",
		Threads:       5,
		CrawlMax:      1,
		RespectRobots: true,
	}
}

// ParseFlags parses args against the CLI surface in §6 plus the two
// politeness flags and the godotenv path added in SPEC_FULL.md §4.Z, then
// silently raises a -threads or -crawl value below 1 to 1 and a negative
// -crawl-rate to 0 (unlimited) rather than rejecting them. Values above
// the validator's max are not clamped; Validate rejects them. No flag
// takes its default from an environment variable.
func ParseFlags(args []string) (*CLIConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet("lexicon", flag.ContinueOnError)

	fs.StringVar(&cfg.TextPath, "text", "", "corpus root to index")
	fs.StringVar(&cfg.QueryPath, "query", "", "query file to search with")
	fs.BoolVar(&cfg.Partial, "partial", false, "use prefix search instead of exact search")
	fs.StringVar(&cfg.CountsPath, "counts", cfg.CountsPath, "path to write counts JSON")
	fs.StringVar(&cfg.IndexPath, "index", cfg.IndexPath, "path to write index JSON")
	fs.StringVar(&cfg.ResultsPath, "results", cfg.ResultsPath, "path to write results JSON")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "number of worker threads")
	fs.StringVar(&cfg.HTMLSeed, "html", "", "seed URL for the web ingester")
	fs.IntVar(&cfg.CrawlMax, "crawl", cfg.CrawlMax, "max total URLs to visit from a seed")
	fs.IntVar(&cfg.CrawlRate, "crawl-rate", cfg.CrawlRate, "max requests/sec per host (0 = unlimited)")
	fs.BoolVar(&cfg.RespectRobots, "crawl-respect-robots", cfg.RespectRobots, "honor robots.txt while crawling")
	fs.StringVar(&cfg.EnvPath, "env", "", "optional .env file to load into the process environment")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.clamp()
	return cfg, nil
}

// clamp applies §7's silent-clamping rule to the numeric knobs.
func (c *CLIConfig) clamp() {
	if c.Threads < 1 {
		c.Threads = 1
	}
	if c.CrawlMax < 1 {
		c.CrawlMax = 1
	}
	if c.CrawlRate < 0 {
		c.CrawlRate = 0
	}
}

// Validate runs the shared reflection-tag validator against c.
func (c *CLIConfig) Validate() error {
	return newTagValidator("validate").Validate(*c)
}
