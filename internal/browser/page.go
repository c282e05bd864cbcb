// Package browser is the page accessor the scrapers drive: navigate, wait for
// a selector, enumerate elements and read their text or attributes. Two
// engines implement it, a playwright-backed Chromium session and a static
// goquery document fetched over HTTP.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNavigation marks a page that could not be loaded at all.
	ErrNavigation = errors.New("navigation failed")
	// ErrTimeout marks a navigation or presence wait that ran out of time.
	ErrTimeout = errors.New("timed out")
)

// Element is a handle to one node of the current document.
type Element interface {
	// Text returns the visible text, normalized with utils.VisibleText.
	Text() (string, error)
	// TextContent returns the raw text content, e.g. the body of a script tag.
	TextContent() (string, error)
	// Attribute reports the attribute value and whether it is present.
	Attribute(name string) (string, bool, error)
	// Click gives up after timeout instead of waiting for the element to become actionable.
	Click(timeout time.Duration) error
}

// Page is one stateful tab. It is not safe for concurrent use.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForPresence(ctx context.Context, selector string, timeout time.Duration) error
	// WaitForVisible is WaitForPresence for elements that must also be rendered visibly.
	WaitForVisible(ctx context.Context, selector string, timeout time.Duration) error
	FindAll(selector string) ([]Element, error)
	URL() string
}

// Session owns a Page and whatever engine resources back it.
type Session interface {
	Page() Page
	Close() error
}

// Launcher starts an independent session per crawl.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// IsTimeout reports whether err is a navigation or presence timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
