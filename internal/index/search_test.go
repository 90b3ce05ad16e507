package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchExactSingleFile(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"hello", "world", "hello"}, "tiny.txt")

	results := idx.Search([]string{"hello"}, false)
	require.Len(t, results, 1)
	assert.Equal(t, "tiny.txt", results[0].Where)
	assert.Equal(t, 2, results[0].Count)
	assert.InDelta(t, 2.0/3.0, results[0].Score, 1e-9)
}

func TestSearchPrefixCountsEveryOccurrenceOfMatchingStem(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"hello", "world", "hello"}, "tiny.txt")

	results := idx.Search([]string{"he"}, true)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Count)
}

func TestSearchExactReturnsNothingWhenStemAbsent(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"hello"}, "tiny.txt")
	assert.Empty(t, idx.Search([]string{"goodbye"}, false))
}

func TestSearchEmptyStemsYieldsNoResults(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"hello"}, "tiny.txt")
	assert.Empty(t, idx.Search(nil, false))
}

func TestSearchTiebreakByCaselessWhere(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"x", "x"}, "A.txt")
	idx.AddAll([]string{"x", "x"}, "b.txt")

	results := idx.Search([]string{"x"}, false)
	require.Len(t, results, 2)
	assert.Equal(t, "A.txt", results[0].Where)
	assert.Equal(t, "b.txt", results[1].Where)
}

func TestSearchDedupesWithinOneTermButSumsAcrossTerms(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"run", "runner"}, "doc.txt")

	exact := idx.Search([]string{"run"}, false)
	require.Len(t, exact, 1)
	assert.Equal(t, 1, exact[0].Count)

	partial := idx.Search([]string{"run"}, true)
	require.Len(t, partial, 1)
	assert.Equal(t, 2, partial[0].Count)
}

func TestSearchScoreOrderingBeatsCount(t *testing.T) {
	idx := New()
	idx.AddAll([]string{"q"}, "short.txt")
	idx.AddAll([]string{"q", "q", "filler", "filler", "filler"}, "long.txt")

	results := idx.Search([]string{"q"}, false)
	require.Len(t, results, 2)
	assert.Equal(t, "short.txt", results[0].Where)
	assert.Equal(t, "long.txt", results[1].Where)
}
