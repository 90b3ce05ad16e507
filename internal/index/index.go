// Package index implements the positional inverted index: a term to
// location to sorted-position map, an auxiliary per-location length table,
// and the exact/prefix ranked search over both. A plain *Index is
// unsynchronized and is meant to be built up locally inside one ingestion
// task before being merged into a SharedIndex (see shared.go).
package index

import (
	"sort"
	"strings"
)

// posting holds the strictly ascending, duplicate-free positions at which a
// term occurs within one location.
type posting struct {
	positions []int
}

// Index is the unshared positional inverted index described by §4.B. All
// methods assume single-threaded (or externally synchronized) access.
type Index struct {
	postings map[string]map[string]*posting
	lengths  map[string]int

	sortedTerms []string
	termsDirty  bool
}

// New returns an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[string]*posting),
		lengths:  make(map[string]int),
	}
}

// Add inserts pos into postings[stem][loc]. It does not touch lengths; the
// caller (AddAll, or a task that wants add-by-add construction) owns that.
func (idx *Index) Add(stem, loc string, pos int) {
	if stem == "" || pos < 1 {
		return
	}
	locs, ok := idx.postings[stem]
	if !ok {
		locs = make(map[string]*posting)
		idx.postings[stem] = locs
		idx.termsDirty = true
	}
	p, ok := locs[loc]
	if !ok {
		locs[loc] = &posting{positions: []int{pos}}
		return
	}
	insertSorted(p, pos)
}

func insertSorted(p *posting, pos int) {
	i := sort.SearchInts(p.positions, pos)
	if i < len(p.positions) && p.positions[i] == pos {
		return
	}
	p.positions = append(p.positions, 0)
	copy(p.positions[i+1:], p.positions[i:])
	p.positions[i] = pos
}

// AddAll sets lengths[loc] to len(stems) (overwriting any prior value) and
// then adds every stem at its 1-based ordinal position. A no-op for an
// empty stems slice.
func (idx *Index) AddAll(stems []string, loc string) {
	if len(stems) == 0 {
		return
	}
	idx.lengths[loc] = len(stems)
	for i, stem := range stems {
		idx.Add(stem, loc, i+1)
	}
}

// Merge unions other's postings into idx (set-union on position slices) and
// folds other's lengths in using replacement-by-larger (see DESIGN.md for
// why that rule was chosen over summing). A location present with differing
// lengths in both indices is a caller-level logic error (§7) — Merge
// reports every such location so the caller can log a warning; Merge itself
// never fails. Merging an index into itself is a guarded no-op so that
// merge(self) is idempotent rather than doubling any length.
func (idx *Index) Merge(other *Index) []string {
	if other == idx {
		return nil
	}

	for term, locs := range other.postings {
		dst, ok := idx.postings[term]
		if !ok {
			dst = make(map[string]*posting)
			idx.postings[term] = dst
			idx.termsDirty = true
		}
		for loc, p := range locs {
			dp, ok := dst[loc]
			if !ok {
				dst[loc] = &posting{positions: append([]int(nil), p.positions...)}
				continue
			}
			dp.positions = unionSorted(dp.positions, p.positions)
		}
	}

	var conflicts []string
	for loc, length := range other.lengths {
		cur, ok := idx.lengths[loc]
		if !ok {
			idx.lengths[loc] = length
			continue
		}
		if cur != length {
			conflicts = append(conflicts, loc)
		}
		if length > cur {
			idx.lengths[loc] = length
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

func unionSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// ContainsStem reports whether stem appears anywhere in the index.
func (idx *Index) ContainsStem(stem string) bool {
	_, ok := idx.postings[stem]
	return ok
}

// ContainsLocation reports whether stem has at least one position recorded
// at loc.
func (idx *Index) ContainsLocation(stem, loc string) bool {
	locs, ok := idx.postings[stem]
	if !ok {
		return false
	}
	_, ok = locs[loc]
	return ok
}

// ContainsPosition reports whether stem occurs at loc at exactly pos.
func (idx *Index) ContainsPosition(stem, loc string, pos int) bool {
	locs, ok := idx.postings[stem]
	if !ok {
		return false
	}
	p, ok := locs[loc]
	if !ok {
		return false
	}
	i := sort.SearchInts(p.positions, pos)
	return i < len(p.positions) && p.positions[i] == pos
}

// NumStems returns the number of distinct stems in the index.
func (idx *Index) NumStems() int {
	return len(idx.postings)
}

// NumLocations returns the number of locations recorded for stem, or 0 if
// the stem is absent.
func (idx *Index) NumLocations(stem string) int {
	return len(idx.postings[stem])
}

// NumPositions returns the number of positions recorded for (stem, loc), or
// 0 if either is absent.
func (idx *Index) NumPositions(stem, loc string) int {
	locs, ok := idx.postings[stem]
	if !ok {
		return 0
	}
	p, ok := locs[loc]
	if !ok {
		return 0
	}
	return len(p.positions)
}

// Length returns the recorded token count for loc and whether it exists.
func (idx *Index) Length(loc string) (int, bool) {
	n, ok := idx.lengths[loc]
	return n, ok
}

// Stems returns a sorted snapshot of every stem in the index.
func (idx *Index) Stems() []string {
	idx.ensureSortedTerms()
	out := make([]string, len(idx.sortedTerms))
	copy(out, idx.sortedTerms)
	return out
}

// Locations returns a sorted snapshot of the locations recorded for stem.
func (idx *Index) Locations(stem string) []string {
	locs := idx.postings[stem]
	out := make([]string, 0, len(locs))
	for loc := range locs {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Positions returns a sorted, duplicate-free snapshot of the positions
// recorded for (stem, loc).
func (idx *Index) Positions(stem, loc string) []int {
	locs, ok := idx.postings[stem]
	if !ok {
		return nil
	}
	p, ok := locs[loc]
	if !ok {
		return nil
	}
	out := make([]int, len(p.positions))
	copy(out, p.positions)
	return out
}

// Counts returns a sorted-by-location snapshot of the length table.
func (idx *Index) Counts() []LocationCount {
	out := make([]LocationCount, 0, len(idx.lengths))
	for loc, n := range idx.lengths {
		out = append(out, LocationCount{Location: loc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// LocationCount pairs a location with its recorded token count.
type LocationCount struct {
	Location string
	Count    int
}

// Clear empties both the postings and the length table.
func (idx *Index) Clear() {
	idx.postings = make(map[string]map[string]*posting)
	idx.lengths = make(map[string]int)
	idx.sortedTerms = nil
	idx.termsDirty = false
}

func (idx *Index) ensureSortedTerms() {
	if !idx.termsDirty && idx.sortedTerms != nil {
		return
	}
	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	idx.sortedTerms = terms
	idx.termsDirty = false
}

// prefixRange returns the slice of ensureSortedTerms()'s cache whose
// elements have q as a prefix, via a lower-bound binary search followed by
// a linear scan that stops at the first non-matching key — the "contiguous
// range scan" §4.G requires instead of a full index scan.
func (idx *Index) prefixRange(q string) []string {
	idx.ensureSortedTerms()
	start := sort.SearchStrings(idx.sortedTerms, q)
	end := start
	for end < len(idx.sortedTerms) && strings.HasPrefix(idx.sortedTerms[end], q) {
		end++
	}
	return idx.sortedTerms[start:end]
}
