package karriere

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/utils"
)

// Extractor turns one detail page into a Job. A nil Job with a nil error
// means the page was skipped.
type Extractor interface {
	Extract(ctx context.Context, page browser.Page, link string) (*scraper.Job, error)
}

// Fallback selectors, most specific first.
var (
	titleSelectors       = []string{`[data-qa="job-title"]`, `h1[class*="title"]`, `h1`}
	companySelectors     = []string{`[data-qa="company-name"]`, `[itemprop="hiringOrganization"]`, `.job-company`, `a[href*="/firmen/"]`}
	locationSelectors    = []string{`[data-qa="job-location"]`, `[data-qa="locations"]`, `[itemprop="addressLocality"]`, `.job-location`}
	descriptionSelectors = []string{`[data-qa="job-description"]`, `[itemprop="description"]`, `.job-description`, `article`}
	postedAtSelectors    = []string{`time[datetime]`, `[data-qa="job-posted"]`, `.posted-date`}
)

// DetailExtractor reads JSON-LD first and fills whatever is still missing
// from the page markup.
type DetailExtractor struct {
	timeout time.Duration
	log     *zap.Logger
}

func NewDetailExtractor(timeout time.Duration, log *zap.Logger) *DetailExtractor {
	return &DetailExtractor{timeout: timeout, log: log}
}

func (e *DetailExtractor) Extract(ctx context.Context, page browser.Page, link string) (*scraper.Job, error) {
	if err := page.Navigate(ctx, link); err != nil {
		return nil, e.skip(ctx, link, "navigate", err)
	}
	if err := page.WaitForPresence(ctx, "body", e.timeout); err != nil {
		return nil, e.skip(ctx, link, "wait", err)
	}

	p := e.fromJSONLD(page, link)
	e.fillFromMarkup(ctx, page, &p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &scraper.Job{
		Title:       scraper.StringPtr(p.Title),
		Company:     scraper.StringPtr(p.Company),
		Location:    scraper.StringPtr(p.Location),
		PostedAt:    scraper.StringPtr(p.PostedAt),
		Link:        link,
		Description: scraper.StringPtr(p.Description),
	}, nil
}

// skip logs a per-link failure. Only a cancelled context is returned.
func (e *DetailExtractor) skip(ctx context.Context, link, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	e.log.Warn("⚠️ Skipping job page", zap.String("link", link), zap.String("step", step),
		zap.Bool("timeout", browser.IsTimeout(err)), zap.Error(err))
	return nil
}

func (e *DetailExtractor) fromJSONLD(page browser.Page, link string) posting {
	scripts, err := page.FindAll(jsonLDSelector)
	if err != nil {
		return posting{}
	}
	for i, s := range scripts {
		raw, err := s.TextContent()
		if err != nil {
			continue
		}
		p, found, err := parseJobPosting(raw)
		if err != nil {
			e.log.Debug("Ignoring malformed JSON-LD block", zap.String("link", link), zap.Int("index", i), zap.Error(err))
			continue
		}
		if found {
			return p
		}
	}
	return posting{}
}

func (e *DetailExtractor) fillFromMarkup(ctx context.Context, page browser.Page, p *posting) {
	fill := func(dst *string, name string, selectors []string, read func(browser.Element) string) {
		if *dst != "" {
			return
		}
		strategies := make([]scraper.Strategy[string], 0, len(selectors))
		for _, sel := range selectors {
			strategies = append(strategies, scraper.Strategy[string]{
				Name: sel,
				Try:  firstText(page, sel, read),
			})
		}
		if v, _, ok := scraper.FirstMatch(ctx, strategies); ok {
			*dst = v
			return
		}
		e.log.Debug("Field not found", zap.String("field", name),
			zap.Error(fmt.Errorf("%w: %s", scraper.ErrFieldLookup, name)))
	}

	fill(&p.Title, "title", titleSelectors, visibleText)
	fill(&p.Company, "company", companySelectors, visibleText)
	fill(&p.Location, "location", locationSelectors, visibleText)
	fill(&p.Description, "description", descriptionSelectors, visibleText)
	fill(&p.PostedAt, "posted_at", postedAtSelectors, datetimeOrText)
}

// firstText returns the first element under selector with non-empty text.
func firstText(page browser.Page, selector string, read func(browser.Element) string) func(context.Context) (string, bool) {
	return func(context.Context) (string, bool) {
		elements, err := page.FindAll(selector)
		if err != nil {
			return "", false
		}
		for _, el := range elements {
			if v := read(el); v != "" {
				return v, true
			}
		}
		return "", false
	}
}

func visibleText(el browser.Element) string {
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return utils.VisibleText(text)
}

func datetimeOrText(el browser.Element) string {
	if v, ok, err := el.Attribute("datetime"); err == nil && ok {
		if v = utils.VisibleText(v); v != "" {
			return v
		}
	}
	return visibleText(el)
}
