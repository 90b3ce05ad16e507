// Package text consolidates the cleaning, splitting, and stemming helpers
// that every other package needs into one static utility bag, mirroring the
// pattern of a single stemmer/tokenizer package rather than one
// helper method per caller.
package text

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/unicode/norm"
)

// Token is one stemmed word together with its 1-based position within the
// text it was parsed from.
type Token struct {
	Stem     string
	Position int
}

// clean strips diacritics and anything that isn't a letter or whitespace,
// then lowercases what remains. Unicode text is first decomposed (NFD) so
// that combining marks separate from their base letter and can be dropped.
func clean(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		if unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// stem reduces a single cleaned word to its English Snowball stem. An empty
// input, or a word the stemmer rejects, yields an empty stem.
func stem(word string) string {
	if word == "" {
		return ""
	}
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil {
		return ""
	}
	return stemmed
}

// Parse cleans and whitespace-splits line, returning the stem of each
// non-empty fragment in document order. Fragments that stem to the empty
// string (after cleaning removed every character) are dropped.
func Parse(line string) []string {
	fields := strings.Fields(clean(line))
	stems := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := stem(f); s != "" {
			stems = append(stems, s)
		}
	}
	return stems
}

// ParseWithPositions is the whole-document variant of Parse: it yields each
// stem together with its 1-based ordinal position in the input.
func ParseWithPositions(line string) []Token {
	stems := Parse(line)
	tokens := make([]Token, len(stems))
	for i, s := range stems {
		tokens[i] = Token{Stem: s, Position: i + 1}
	}
	return tokens
}

// UniqueStems parses line and returns its stems deduplicated and sorted in
// byte order, the representation the query processor uses to build a
// QueryKey.
func UniqueStems(line string) []string {
	stems := Parse(line)
	seen := make(map[string]struct{}, len(stems))
	unique := make([]string, 0, len(stems))
	for _, s := range stems {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	sort.Strings(unique)
	return unique
}

// QueryKey joins sorted, unique stems into the canonical string a query
// memoises under. An empty input, or a line that stems to nothing, yields
// the empty string, which callers treat as "skip this query".
func QueryKey(stems []string) string {
	return strings.Join(stems, " ")
}
