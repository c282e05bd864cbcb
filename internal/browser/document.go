package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-karriere-scraper/utils"
)

// Fetcher retrieves the raw HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches pages with a plain HTTP client. It does not run scripts.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, targetURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %s: %v", ErrTimeout, targetURL, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, targetURL, err)
	}
	// Like a browser, error statuses still render a document.
	return resp.Body, nil
}

// DocumentPage is a Page over a static HTML snapshot. Presence waits resolve
// immediately since nothing changes after load, and clicks are no-ops.
type DocumentPage struct {
	fetcher Fetcher
	timeout time.Duration
	url     string
	doc     *goquery.Document
}

func NewDocumentPage(fetcher Fetcher, timeout time.Duration) *DocumentPage {
	return &DocumentPage{fetcher: fetcher, timeout: timeout}
}

func (p *DocumentPage) Navigate(ctx context.Context, targetURL string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	body, err := p.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrNavigation, targetURL, err)
	}

	p.url = targetURL
	p.doc = doc
	return nil
}

func (p *DocumentPage) WaitForPresence(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.doc == nil || p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %q not present", ErrTimeout, selector)
	}
	return nil
}

// WaitForVisible equals WaitForPresence: a static document has no layout.
func (p *DocumentPage) WaitForVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.WaitForPresence(ctx, selector, timeout)
}

func (p *DocumentPage) FindAll(selector string) ([]Element, error) {
	if p.doc == nil {
		return nil, nil
	}
	var elements []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, documentElement{sel: s})
	})
	return elements, nil
}

func (p *DocumentPage) URL() string {
	return p.url
}

type documentElement struct {
	sel *goquery.Selection
}

func (e documentElement) Text() (string, error) {
	return utils.VisibleText(e.sel.Text()), nil
}

func (e documentElement) TextContent() (string, error) {
	return e.sel.Text(), nil
}

func (e documentElement) Attribute(name string) (string, bool, error) {
	val, ok := e.sel.Attr(name)
	return val, ok, nil
}

func (e documentElement) Click(time.Duration) error {
	return nil
}

// DocumentLauncher hands out static sessions; each gets its own DocumentPage.
type DocumentLauncher struct {
	fetcher Fetcher
	timeout time.Duration
}

func NewDocumentLauncher(fetcher Fetcher, timeout time.Duration) *DocumentLauncher {
	return &DocumentLauncher{fetcher: fetcher, timeout: timeout}
}

func (l *DocumentLauncher) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &documentSession{page: NewDocumentPage(l.fetcher, l.timeout)}, nil
}

type documentSession struct {
	page *DocumentPage
	once sync.Once
}

func (s *documentSession) Page() Page {
	return s.page
}

func (s *documentSession) Close() error {
	s.once.Do(func() { s.page.doc = nil })
	return nil
}
