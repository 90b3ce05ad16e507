package web

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dchatterjee/lexicon/internal/index"
	"github.com/dchatterjee/lexicon/internal/pool"
	"github.com/dchatterjee/lexicon/internal/text"
)

// Logger receives warnings/errors encountered while crawling, the same
// shape the corpus ingester logs through.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Ingester performs the bounded-BFS crawl from a seed URL described by
// §4.I: fetch, clean, tokenise, merge, extract links, enqueue — one
// worker-pool task per URL, a shared visited set guarding against
// revisits, and a hard cap on the total number of pages fetched.
// A sync.Map visited set feeds the same worker pool the corpus
// ingester uses.
type Ingester struct {
	Shared  *index.SharedIndex
	Pool    *pool.Pool
	Fetcher Fetcher
	Links   LinkExtractor
	Clean   Cleaner
	Robots  *RobotsGuard
	Limiter *HostLimiters
	Logger  Logger

	MaxPages int

	visited sync.Map
	visits  atomic.Int64
}

// Crawl seeds the frontier with seed and BFS-expands it through the pool,
// stopping once MaxPages URLs have been claimed for fetching (§4.I: "a
// cap on the total number of URLs visited"). It does not wait for the
// dispatched tasks; call Pool.Finish once crawling (and any sibling
// corpus ingestion sharing the pool) should be awaited.
func (ing *Ingester) Crawl(ctx context.Context, seed string) error {
	if _, err := url.Parse(seed); err != nil {
		ing.logf("invalid seed URL: %s: %v", seed, err)
		return nil
	}
	ing.dispatch(ctx, seed)
	return nil
}

func (ing *Ingester) dispatch(ctx context.Context, rawURL string) {
	if !ing.claim(rawURL) {
		return
	}
	taskID := uuid.New()
	ing.Pool.Execute(func() {
		ing.visitOne(ctx, taskID, rawURL)
	})
}

// claim reserves one slot of the page budget and marks rawURL visited,
// returning false if the URL was already seen or the budget is
// exhausted. The budget is checked before rawURL is ever recorded in
// visited, so a URL that arrives once the cap is already spent is never
// added to the visited set — only URLs actually claimed for fetching
// are. Reserving the slot before the fetch (rather than after a
// successful one) keeps MaxPages a hard cap on attempts, not just
// successes.
func (ing *Ingester) claim(rawURL string) bool {
	if _, seen := ing.visited.Load(rawURL); seen {
		return false
	}
	if ing.MaxPages > 0 && ing.visits.Add(1) > int64(ing.MaxPages) {
		return false
	}
	_, loaded := ing.visited.LoadOrStore(rawURL, true)
	return !loaded
}

func (ing *Ingester) visitOne(ctx context.Context, taskID uuid.UUID, rawURL string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		ing.logf("[%s] unparsable URL: %s: %v", taskID, rawURL, err)
		return
	}

	if ing.Limiter != nil {
		ing.Limiter.Wait(parsed.Host)
	}
	if ing.Robots != nil && !ing.Robots.Allowed(ctx, parsed.Scheme, parsed.Host, parsed.Path) {
		return
	}

	result, err := ing.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		ing.logf("[%s] unable to fetch: %s: %v", taskID, rawURL, err)
		return
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		ing.logf("[%s] non-2xx status %d: %s", taskID, result.StatusCode, rawURL)
		return
	}
	if !IsHTML(result.ContentType) {
		return
	}

	plain := ing.Clean.Clean(result.Body)
	local := index.New()
	local.AddAll(text.Parse(plain), rawURL)
	ing.Shared.Merge(local, ing.Logger)

	for _, link := range ing.Links.ExtractLinks(rawURL, result.Body) {
		ing.dispatch(ctx, link)
	}
}

func (ing *Ingester) logf(format string, args ...any) {
	if ing.Logger != nil {
		ing.Logger.Errorf(format, args...)
	}
}

// Visited returns the set of URLs claimed during the crawl, for tests
// that need to assert set membership rather than visit order (crawl
// order is inherently non-deterministic once more than one worker is
// pulling from the frontier).
func (ing *Ingester) Visited() []string {
	var out []string
	ing.visited.Range(func(key, _ any) bool {
		out = append(out, key.(string))
		return true
	})
	return out
}
