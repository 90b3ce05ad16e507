// Package web implements the optional web ingester from §4.I: bounded BFS
// over a seed URL, a shared visited set, and per-URL tasks that fetch,
// clean, tokenise, and merge into the shared index exactly like a corpus
// file does. Fetch/link-extraction/cleaning are specified only as
// interfaces the core consumes (§1); this package also ships default
// HTTP/HTML-based implementations of those interfaces, since the CLI
// binary needs a working -html flag end to end.
package web

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FetchResult is what a Fetcher returns for one URL.
type FetchResult struct {
	StatusCode  int
	ContentType string
	Body        string
}

// Fetcher retrieves a URL's content. The core only depends on this
// interface; HTTP is an external collaborator (§1).
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// HTTPFetcher is the default Fetcher: a context-scoped GET with a
// bounded redirect count and a streaming body read.
type HTTPFetcher struct {
	Client      *http.Client
	RedirectCap int
	Timeout     time.Duration
}

// NewHTTPFetcher returns a fetcher that follows at most redirectCap
// redirects (the cap §4.I's contract names, e.g. 3) and times each request
// out after timeout.
func NewHTTPFetcher(redirectCap int, timeout time.Duration) *HTTPFetcher {
	if redirectCap < 0 {
		redirectCap = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > redirectCap {
				return fmt.Errorf("stopped after %d redirects", redirectCap)
			}
			return nil
		},
		Transport: &http.Transport{
			IdleConnTimeout:   90 * time.Second,
			ForceAttemptHTTP2: true,
		},
	}
	return &HTTPFetcher{Client: client, RedirectCap: redirectCap, Timeout: timeout}
}

// Fetch performs the GET. A transport or body-read failure is returned as
// an error; any HTTP status, 2xx or not, is returned in the result with a
// nil error, leaving the caller to decide whether the page is usable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, err
	}
	req.Header.Set("User-Agent", "lexicon-crawler/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := f.Client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func readBody(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// IsHTML reports whether a Content-Type header value denotes HTML. An
// empty value is treated as HTML.
func IsHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html") || contentType == ""
}
