package index

import "sync"

// SharedIndex is a concurrency-safe handle around an *Index: the generic
// "shared handle" the design notes call for in place of a hand-rolled
// "thread-safe index" subclass that wraps every method in a lock. The
// index itself stays unaware of concurrency; only this wrapper knows about
// sync.RWMutex.
//
// Go's documented RWMutex behaviour — a blocked Lock call prevents later
// RLock callers from acquiring the lock until that writer has run — is
// exactly the writer-preference semantics §4.C requires, so no custom
// reader/writer primitive is needed here.
type SharedIndex struct {
	mu  sync.RWMutex
	idx *Index
}

// NewShared wraps a fresh empty Index for concurrent use.
func NewShared() *SharedIndex {
	return &SharedIndex{idx: New()}
}

// MergeLogger receives a notice whenever Merge finds a location with
// conflicting lengths coming from two different local indices — the
// logic-bug case §7 calls out (the ingester should only ever build one
// local per location).
type MergeLogger interface {
	Warnf(format string, args ...any)
}

// Merge acquires the write lock and folds local into the shared index,
// logging a warning (if logger is non-nil) for every location whose length
// disagreed between the two sides.
func (s *SharedIndex) Merge(local *Index, logger MergeLogger) {
	s.mu.Lock()
	conflicts := s.idx.Merge(local)
	s.mu.Unlock()

	if logger == nil {
		return
	}
	for _, loc := range conflicts {
		logger.Warnf("merge conflict: location %q indexed by more than one task; kept the larger length", loc)
	}
}

// Add acquires the write lock and adds a single posting.
func (s *SharedIndex) Add(stem, loc string, pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx.Add(stem, loc, pos)
}

// AddAll acquires the write lock and bulk-adds stems for loc.
func (s *SharedIndex) AddAll(stems []string, loc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx.AddAll(stems, loc)
}

// Clear acquires the write lock and empties the index.
func (s *SharedIndex) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx.Clear()
}

// ContainsStem acquires the read lock and delegates to the wrapped index.
func (s *SharedIndex) ContainsStem(stem string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.ContainsStem(stem)
}

// ContainsLocation acquires the read lock and delegates to the wrapped index.
func (s *SharedIndex) ContainsLocation(stem, loc string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.ContainsLocation(stem, loc)
}

// ContainsPosition acquires the read lock and delegates to the wrapped index.
func (s *SharedIndex) ContainsPosition(stem, loc string, pos int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.ContainsPosition(stem, loc, pos)
}

// NumStems acquires the read lock and delegates to the wrapped index.
func (s *SharedIndex) NumStems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.NumStems()
}

// Stems acquires the read lock and returns a sorted snapshot of every stem.
func (s *SharedIndex) Stems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Stems()
}

// Locations acquires the read lock and returns a sorted snapshot.
func (s *SharedIndex) Locations(stem string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Locations(stem)
}

// Positions acquires the read lock and returns a sorted snapshot.
func (s *SharedIndex) Positions(stem, loc string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Positions(stem, loc)
}

// Counts acquires the read lock and returns a sorted-by-location snapshot
// of the length table.
func (s *SharedIndex) Counts() []LocationCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Counts()
}

// Search acquires the read lock, runs the search, and releases the lock
// before returning — callers that want to memoise results (internal/query)
// must take their own separate lock afterwards, never this one.
func (s *SharedIndex) Search(stems []string, partial bool) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Search(stems, partial)
}

// Snapshot acquires the read lock and returns the wrapped index's term/
// location/position tree for the JSON emitter, without exposing mutable
// internals: term -> location -> sorted positions.
func (s *SharedIndex) Snapshot() []TermEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := s.idx.Stems()
	entries := make([]TermEntry, 0, len(terms))
	for _, term := range terms {
		locs := s.idx.Locations(term)
		locEntries := make([]LocationEntry, 0, len(locs))
		for _, loc := range locs {
			locEntries = append(locEntries, LocationEntry{
				Location:  loc,
				Positions: s.idx.Positions(term, loc),
			})
		}
		entries = append(entries, TermEntry{Term: term, Locations: locEntries})
	}
	return entries
}

// TermEntry is one term's full posting tree, sorted by location.
type TermEntry struct {
	Term      string
	Locations []LocationEntry
}

// LocationEntry is one location's sorted position list under a term.
type LocationEntry struct {
	Location  string
	Positions []int
}
