// Package jsonout is the streaming pretty-printer from §4.H: it emits the
// index, the per-location counts, and ranked query results as UTF-8 text
// with two-space indentation, sorted keys, and an 8-decimal fixed score
// field, via a hand-rolled recursive object/array writer over an
// io.Writer. encoding/json is not used: it cannot pin the score field to
// exactly 8 decimals or guarantee the field order and comma placement
// the test fixtures compare against.
package jsonout

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dchatterjee/lexicon/internal/index"
)

func writeIndent(w *bufio.Writer, n int) {
	for ; n > 0; n-- {
		w.WriteString("  ")
	}
}

func writeQuoted(w *bufio.Writer, s string) {
	w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		default:
			w.WriteRune(r)
		}
	}
	w.WriteByte('"')
}

func writeIntArray(w *bufio.Writer, values []int, indent int) {
	w.WriteByte('[')
	w.WriteByte('\n')
	for i, v := range values {
		if i > 0 {
			w.WriteString(",\n")
		}
		writeIndent(w, indent+1)
		w.WriteString(strconv.Itoa(v))
	}
	if len(values) > 0 {
		w.WriteByte('\n')
	}
	writeIndent(w, indent)
	w.WriteByte(']')
}

// WriteIndex emits the Index JSON shape: an object keyed by term (already
// sorted by the caller), each value an object keyed by location (already
// sorted), each value an ascending array of positions.
func WriteIndex(w io.Writer, terms []index.TermEntry) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	bw.WriteByte('\n')
	for i, term := range terms {
		if i > 0 {
			bw.WriteString(",\n")
		}
		writeIndent(bw, 1)
		writeQuoted(bw, term.Term)
		bw.WriteString(": ")
		writeLocationsObject(bw, term.Locations, 1)
	}
	if len(terms) > 0 {
		bw.WriteByte('\n')
	}
	bw.WriteByte('}')
	return bw.Flush()
}

func writeLocationsObject(w *bufio.Writer, locations []index.LocationEntry, indent int) {
	w.WriteByte('{')
	w.WriteByte('\n')
	for i, loc := range locations {
		if i > 0 {
			w.WriteString(",\n")
		}
		writeIndent(w, indent+1)
		writeQuoted(w, loc.Location)
		w.WriteString(": ")
		writeIntArray(w, loc.Positions, indent+1)
	}
	if len(locations) > 0 {
		w.WriteByte('\n')
	}
	writeIndent(w, indent)
	w.WriteByte('}')
}

// WriteCounts emits the Counts JSON shape: an object keyed by location
// (already sorted) with integer values.
func WriteCounts(w io.Writer, counts []index.LocationCount) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	bw.WriteByte('\n')
	for i, c := range counts {
		if i > 0 {
			bw.WriteString(",\n")
		}
		writeIndent(bw, 1)
		writeQuoted(bw, c.Location)
		bw.WriteString(": ")
		bw.WriteString(strconv.Itoa(c.Count))
	}
	if len(counts) > 0 {
		bw.WriteByte('\n')
	}
	bw.WriteByte('}')
	return bw.Flush()
}

// QueryResults pairs a canonical QueryKey with its ranked results, the unit
// WriteResults emits one entry of.
type QueryResults struct {
	Key     string
	Results []index.SearchResult
}

// WriteResults emits the Results JSON shape: an object keyed by QueryKey
// (already sorted), each value an array of result objects with fields, in
// order, count (integer), score (fixed 8 decimals), where (string).
func WriteResults(w io.Writer, entries []QueryResults) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	bw.WriteByte('\n')
	for i, e := range entries {
		if i > 0 {
			bw.WriteString(",\n")
		}
		writeIndent(bw, 1)
		writeQuoted(bw, e.Key)
		bw.WriteString(": ")
		writeResultArray(bw, e.Results, 1)
	}
	if len(entries) > 0 {
		bw.WriteByte('\n')
	}
	bw.WriteByte('}')
	return bw.Flush()
}

func writeResultArray(w *bufio.Writer, results []index.SearchResult, indent int) {
	w.WriteByte('[')
	w.WriteByte('\n')
	for i, r := range results {
		if i > 0 {
			w.WriteString(",\n")
		}
		writeIndent(w, indent+1)
		writeResultObject(w, r, indent+1)
	}
	if len(results) > 0 {
		w.WriteByte('\n')
	}
	writeIndent(w, indent)
	w.WriteByte(']')
}

func writeResultObject(w *bufio.Writer, r index.SearchResult, indent int) {
	w.WriteByte('{')
	w.WriteByte('\n')

	writeIndent(w, indent+1)
	w.WriteString(`"count": `)
	w.WriteString(strconv.Itoa(r.Count))
	w.WriteString(",\n")

	writeIndent(w, indent+1)
	w.WriteString(`"score": `)
	w.WriteString(fmt.Sprintf("%.8f", r.Score))
	w.WriteString(",\n")

	writeIndent(w, indent+1)
	w.WriteString(`"where": `)
	writeQuoted(w, r.Where)
	w.WriteByte('\n')

	writeIndent(w, indent)
	w.WriteByte('}')
}

// EscapeForTest exposes writeQuoted's escaping behaviour for tests without
// requiring a full object to exercise it.
func EscapeForTest(s string) string {
	var sb strings.Builder
	bw := bufio.NewWriter(&sb)
	writeQuoted(bw, s)
	bw.Flush()
	return sb.String()
}
