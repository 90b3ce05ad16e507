package web

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// LinkExtractor pulls outbound hyperlinks out of a fetched HTML document.
type LinkExtractor interface {
	ExtractLinks(base string, body string) []string
}

// HTMLLinkExtractor is the default LinkExtractor: a streaming
// html.Tokenizer walk collecting every anchor's href, resolved against
// base and stripped of its fragment, since a fragment-only difference
// is the same page for crawl purposes.
type HTMLLinkExtractor struct{}

func (HTMLLinkExtractor) ExtractLinks(base string, body string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	tok := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			tag := tok.Token()
			if tag.Data != "a" {
				continue
			}
			for _, attr := range tag.Attr {
				if attr.Key != "href" {
					continue
				}
				resolved := resolve(baseURL, attr.Val)
				if resolved == "" || seen[resolved] {
					continue
				}
				seen[resolved] = true
				links = append(links, resolved)
			}
		}
	}
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
