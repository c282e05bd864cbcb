// Package browsertest provides in-memory fixtures for the browser package,
// so scrapers can be exercised against canned HTML without a real browser.
package browsertest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go-karriere-scraper/internal/browser"
)

// Fetcher serves canned HTML by exact URL and records every request.
type Fetcher struct {
	mu     sync.Mutex
	Pages  map[string]string
	Errors map[string]error
	calls  []string
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		Pages:  make(map[string]string),
		Errors: make(map[string]error),
	}
}

// Page registers html for url and returns the fetcher for chaining.
func (f *Fetcher) Page(url, html string) *Fetcher {
	f.Pages[url] = html
	return f
}

// Fail makes every fetch of url return err.
func (f *Fetcher) Fail(url string, err error) *Fetcher {
	f.Errors[url] = err
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.Errors[url]; ok {
		return nil, err
	}
	html, ok := f.Pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: no fixture for %s", browser.ErrNavigation, url)
	}
	return io.NopCloser(strings.NewReader(html)), nil
}

// Calls returns the URLs fetched so far, in order.
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times url was fetched.
func (f *Fetcher) CallCount(url string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == url {
			n++
		}
	}
	return n
}
