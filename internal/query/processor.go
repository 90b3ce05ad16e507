// Package query implements the query processor from §4.F: two independent
// memo maps (exact and prefix), keyed by QueryKey, fed by per-line search
// tasks dispatched through the worker pool. Memo access is guarded by a
// plain Go mutex; searches run against internal/index.SharedIndex.Search,
// which releases the index lock before returning, preserving the
// lock-ordering rule in §5: the index lock is never held while the memo
// mutex is taken.
package query

import (
	"bufio"
	"os"
	"sort"
	"sync"

	"github.com/dchatterjee/lexicon/internal/index"
	"github.com/dchatterjee/lexicon/internal/pool"
	"github.com/dchatterjee/lexicon/internal/text"
)

// Searcher is the read-side of internal/index.SharedIndex that the query
// processor depends on.
type Searcher interface {
	Search(stems []string, partial bool) []index.SearchResult
}

// Processor owns the exact and partial memo maps described by §3's "Query
// memo": two independent ordered-by-QueryKey maps of ranked results.
type Processor struct {
	shared Searcher
	p      *pool.Pool

	mu      sync.Mutex
	exact   map[string][]index.SearchResult
	partial map[string][]index.SearchResult
}

// New returns a processor backed by shared for searches and p for
// dispatching per-line tasks from ProcessFile.
func New(shared Searcher, p *pool.Pool) *Processor {
	return &Processor{
		shared:  shared,
		p:       p,
		exact:   make(map[string][]index.SearchResult),
		partial: make(map[string][]index.SearchResult),
	}
}

func (proc *Processor) memoFor(usePartial bool) map[string][]index.SearchResult {
	if usePartial {
		return proc.partial
	}
	return proc.exact
}

// ProcessLine normalises line into a QueryKey; an empty key (a blank line,
// or one whose every character is removed by cleaning, such as digits or
// punctuation only) yields an empty result list
// without touching either memo. A memo hit returns the stored list
// without re-running the search. Otherwise the search runs against the
// shared index (which holds its own read lock only for the duration of
// the search) and the result is stored in the corresponding memo under
// its own mutex — the two locks are never held at the same time.
func (proc *Processor) ProcessLine(line string, usePartial bool) []index.SearchResult {
	stems := text.UniqueStems(line)
	key := text.QueryKey(stems)
	if key == "" {
		return nil
	}

	proc.mu.Lock()
	if cached, ok := proc.memoFor(usePartial)[key]; ok {
		proc.mu.Unlock()
		return cached
	}
	proc.mu.Unlock()

	results := proc.shared.Search(stems, usePartial)

	proc.mu.Lock()
	proc.memoFor(usePartial)[key] = results
	proc.mu.Unlock()

	return results
}

// ProcessFile reads path line by line and submits each non-blank raw line
// to the pool as an independent ProcessLine task, per §4.F. It does not
// wait for those tasks; call Pool.Finish once all dispatched work (across
// every collaborator sharing the pool) should be awaited.
func (proc *Processor) ProcessFile(path string, usePartial bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if blank(line) {
			continue
		}
		proc.p.Execute(func() {
			proc.ProcessLine(line, usePartial)
		})
	}
	return scanner.Err()
}

func blank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}
	return true
}

// Results returns a read-only snapshot of the requested memo, ordered by
// QueryKey.
func (proc *Processor) Results(usePartial bool) []QueryResult {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	memo := proc.memoFor(usePartial)
	keys := make([]string, 0, len(memo))
	for k := range memo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]QueryResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, QueryResult{Key: k, Results: memo[k]})
	}
	return out
}

// QueryResult pairs a QueryKey with its memoised ranked results.
type QueryResult struct {
	Key     string
	Results []index.SearchResult
}
