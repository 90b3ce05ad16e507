package web

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Cleaner reduces a fetched HTML document to the plain-text content that
// should be tokenised and indexed.
type Cleaner interface {
	Clean(body string) string
}

// HTMLCleaner is the default Cleaner: a streaming walk that collects
// TextToken data outside of script/style elements, joined with single
// spaces.
type HTMLCleaner struct{}

func (HTMLCleaner) Clean(body string) string {
	var sb strings.Builder
	skip := 0

	tok := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			t := tok.Token()
			if t.DataAtom == atom.Script || t.DataAtom == atom.Style {
				skip++
			}
		case html.EndTagToken:
			t := tok.Token()
			if (t.DataAtom == atom.Script || t.DataAtom == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				text := strings.TrimSpace(tok.Token().Data)
				if text != "" {
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}
		}
	}
}
