package karriere

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/browser/browsertest"
	"go-karriere-scraper/internal/scraper"
)

const testBase = "https://www.karriere.at/jobs"

var (
	listing1 = SearchURL(testBase, "IT", "Wien", 1)
	listing2 = SearchURL(testBase, "IT", "Wien", 2)
	listing3 = SearchURL(testBase, "IT", "Wien", 3)

	job1 = "https://www.karriere.at/jobs/1"
	job2 = "https://www.karriere.at/jobs/2"
	job3 = "https://www.karriere.at/jobs/3"
)

const listing1HTML = `<html><body>
<a href="/jobs/1">Go Developer</a>
<a href="/jobs/1#apply">Apply now</a>
<a href="https://www.karriere.at/jobs/2">Backend Engineer</a>
<a href="/jobs/it/wien">More IT jobs</a>
<a href="/jobs/">All jobs</a>
<a>no href</a>
</body></html>`

const listing2HTML = `<html><body>
<a href="/jobs/2">Backend Engineer (again)</a>
<a href="/jobs/3#top">Data Engineer</a>
</body></html>`

const job1HTML = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
<script type="application/ld+json">{
  "@context": "https://schema.org",
  "@type": "JobPosting",
  "title": "Go   Developer",
  "datePosted": "2026-01-10",
  "hiringOrganization": {"@type": "Organization", "name": "Byte GmbH"},
  "jobLocation": [{"@type": "Place", "address": {"addressRegion": "Wien"}}],
  "description": "&lt;p&gt;Build &amp; ship&lt;/p&gt;<ul><li>Go</li></ul>"
}</script>
</head><body>
<h1 class="job-title">Conflicting Title</h1>
<span data-qa="company-name">Other Company</span>
</body></html>`

const job2HTML = `<html><head>
<script type="application/ld+json">{ this is not json</script>
</head><body>
<h1>Backend   Engineer</h1>
<span data-qa="company-name">ACME GmbH</span>
<p>Some text without structure</p>
</body></html>`

func newFixture() *browsertest.Fetcher {
	return browsertest.NewFetcher().
		Page(listing1, listing1HTML).
		Page(listing2, listing2HTML).
		Page(job1, job1HTML).
		Page(job2, job2HTML).
		Fail(job3, fmt.Errorf("%w: detail page too slow", browser.ErrTimeout))
}

func newTestPage(f *browsertest.Fetcher) *browser.DocumentPage {
	return browser.NewDocumentPage(f, time.Second)
}

func newTestScraper(ext Extractor) *Scraper {
	return New(Options{BaseURL: testBase, Timeout: time.Second, Extractor: ext}, zap.NewNop())
}

// countingExtractor records every link it is asked to extract.
type countingExtractor struct {
	inner Extractor
	calls []string
}

func (c *countingExtractor) Extract(ctx context.Context, page browser.Page, link string) (*scraper.Job, error) {
	c.calls = append(c.calls, link)
	return c.inner.Extract(ctx, page, link)
}

func newCountingExtractor() *countingExtractor {
	return &countingExtractor{inner: NewDetailExtractor(time.Second, zap.NewNop())}
}

// fakeElement and fakePage cover behaviour the static engine cannot show,
// such as clicks.
type fakeElement struct {
	text     string
	attrs    map[string]string
	clicks   *int
	clickErr error
	timeouts *[]time.Duration
}

func (e fakeElement) Text() (string, error)        { return e.text, nil }
func (e fakeElement) TextContent() (string, error) { return e.text, nil }

func (e fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e fakeElement) Click(timeout time.Duration) error {
	if e.timeouts != nil {
		*e.timeouts = append(*e.timeouts, timeout)
	}
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.clicks != nil {
		*e.clicks++
	}
	return nil
}

type fakePage struct {
	url      string
	elements map[string][]browser.Element
	waits    []string
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.url = url
	return nil
}

func (p *fakePage) WaitForPresence(ctx context.Context, selector string, timeout time.Duration) error {
	p.waits = append(p.waits, selector)
	if len(p.elements[selector]) == 0 {
		return browser.ErrTimeout
	}
	return nil
}

func (p *fakePage) WaitForVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.WaitForPresence(ctx, selector, timeout)
}

func (p *fakePage) FindAll(selector string) ([]browser.Element, error) {
	return p.elements[selector], nil
}

func (p *fakePage) URL() string { return p.url }
