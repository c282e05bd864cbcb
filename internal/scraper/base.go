// Scraper contracts shared by site implementations, plus the Crawler that
// owns the browser session around a single crawl.

package scraper

import (
	"context"

	"go-karriere-scraper/internal/browser"
)

// Job is one extracted posting. Only Link is guaranteed; a nil field means
// the page did not expose it.
type Job struct {
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	PostedAt    *string `json:"posted_at"`
	Link        string  `json:"link"`
	Description *string `json:"description"`
}

// Query is what the caller asks for. MaxJobs of 0 means no cap.
type Query struct {
	Field     string
	Region    string
	PageLimit int
	MaxJobs   int
}

// Meta carries crawl bookkeeping.
type Meta struct {
	Timestamp int64 `json:"ts"`
}

// Result is the crawl output. Count always equals len(Jobs).
type Result struct {
	Field  string `json:"field"`
	Region string `json:"region"`
	Count  int    `json:"count"`
	Jobs   []Job  `json:"jobs"`
	Meta   Meta   `json:"meta"`
}

// Scraper defines the interface that all platform scrapers must implement
type Scraper interface {
	// Scrape drives page through the site for q and returns jobs in discovery order.
	Scrape(ctx context.Context, page browser.Page, q Query) ([]Job, error)

	// Name is the platform name
	Name() string
}

// StringPtr returns nil for "", otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
