package scraper

import (
	"errors"
	"fmt"

	"go-karriere-scraper/internal/browser"
)

var (
	// ErrStartup means the rendering engine could not be launched.
	ErrStartup = errors.New("browser startup failed")
	// ErrNavigation and ErrTimeout are the page accessor's failures.
	ErrNavigation = browser.ErrNavigation
	ErrTimeout    = browser.ErrTimeout
	// ErrParse marks a malformed structured-data block. Always absorbed.
	ErrParse = errors.New("structured data parse failed")
	// ErrFieldLookup marks a heuristic selector that matched nothing. Always absorbed.
	ErrFieldLookup = errors.New("field lookup failed")
	// ErrPanic marks a crawl aborted by an unexpected fault.
	ErrPanic = errors.New("crawl panicked")
)

// CrawlError is the single error a caller sees for a failed crawl.
type CrawlError struct {
	Op  string
	Err error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl %s: %v", e.Op, e.Err)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}
