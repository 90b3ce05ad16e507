package index

import (
	"sort"
	"strings"
)

// SearchResult is one ranked hit: where a query's stems were found, how
// many times, and the resulting score. Score is materialised here at
// construction time from the location's length — per the design notes,
// results never hold a back-reference into the index to recompute it
// later.
type SearchResult struct {
	Where string
	Count int
	Score float64
}

func newSearchResult(where string, count, length int) SearchResult {
	var score float64
	if length > 0 {
		score = float64(count) / float64(length)
	}
	return SearchResult{Where: where, Count: count, Score: score}
}

// Search performs an exact or prefix lookup for the given sorted set of
// stems and returns ranked results, one per location, ordered by
// descending score, then descending count, then ascending caseless
// location. stems is assumed already deduplicated (text.UniqueStems does
// this). Each index term contributes its positions at most once per
// location, even when several prefixes in stems match it.
func (idx *Index) Search(stems []string, partial bool) []SearchResult {
	if len(stems) == 0 {
		return nil
	}

	matches := make(map[string]int)
	order := make([]string, 0)
	counted := make(map[string]bool)

	accumulate := func(term string) {
		if counted[term] {
			return
		}
		counted[term] = true
		locs, ok := idx.postings[term]
		if !ok {
			return
		}
		for loc, p := range locs {
			if _, seen := matches[loc]; !seen {
				order = append(order, loc)
			}
			matches[loc] += len(p.positions)
		}
	}

	if partial {
		for _, q := range stems {
			for _, term := range idx.prefixRange(q) {
				accumulate(term)
			}
		}
	} else {
		for _, q := range stems {
			accumulate(q)
		}
	}

	results := make([]SearchResult, 0, len(matches))
	for _, loc := range order {
		length := idx.lengths[loc]
		results = append(results, newSearchResult(loc, matches[loc], length))
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return strings.ToLower(a.Where) < strings.ToLower(b.Where)
	})

	return results
}
