// Package karriere crawls karriere.at search results for a field and region
// and extracts the job postings behind them.
package karriere

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/dedup"
	"go-karriere-scraper/internal/politeness"
	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/utils"
)

const DefaultBaseURL = "https://www.karriere.at/jobs"

type Options struct {
	BaseURL string
	// Timeout bounds every readiness wait.
	Timeout time.Duration
	// Extractor defaults to a DetailExtractor using Timeout.
	Extractor Extractor
	// Politeness is optional; nil disables throttling and robots checks.
	Politeness *politeness.DomainManager
	// Screenshots is optional; when set, a fatal first-page failure is captured.
	Screenshots *utils.ScreenShotDebugger
}

type Scraper struct {
	opts      Options
	extractor Extractor
	log       *zap.Logger
}

func New(opts Options, log *zap.Logger) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = NewDetailExtractor(opts.Timeout, log)
	}
	return &Scraper{opts: opts, extractor: extractor, log: log}
}

func (s *Scraper) Name() string {
	return "karriere.at"
}

// SearchURL builds <base>/<field>/<region>, adding ?page=n after the first page.
func SearchURL(base, field, region string, page int) string {
	u := strings.TrimRight(base, "/") + "/" + url.PathEscape(field) + "/" + url.PathEscape(region)
	if page > 1 {
		u += fmt.Sprintf("?page=%d", page)
	}
	return u
}

// Scrape walks listing pages 1..q.PageLimit and extracts every new detail
// link, stopping early once q.MaxJobs records are collected.
func (s *Scraper) Scrape(ctx context.Context, page browser.Page, q scraper.Query) ([]scraper.Job, error) {
	pageLimit := q.PageLimit
	if pageLimit < 1 {
		pageLimit = 1
	}
	log := s.log.With(zap.String("field", q.Field), zap.String("region", q.Region))

	firstURL := SearchURL(s.opts.BaseURL, q.Field, q.Region, 1)
	log.Info("📋 Searching karriere.at...", zap.String("url", firstURL))
	if err := s.openListing(ctx, page, firstURL); err != nil {
		if ctx.Err() != nil {
			return nil, &scraper.CrawlError{Op: "first page", Err: ctx.Err()}
		}
		s.captureFailure(page, err)
		return nil, &scraper.CrawlError{Op: "first page", Err: err}
	}

	DismissConsent(ctx, page, log)

	jobs := []scraper.Job{}
	seen := dedup.NewLinkSet()
	limitReached := func() bool {
		return q.MaxJobs > 0 && len(jobs) >= q.MaxJobs
	}

pages:
	for n := 1; n <= pageLimit; n++ {
		if err := ctx.Err(); err != nil {
			return nil, &scraper.CrawlError{Op: "page loop", Err: err}
		}

		if n > 1 {
			listingURL := SearchURL(s.opts.BaseURL, q.Field, q.Region, n)
			if err := s.openListing(ctx, page, listingURL); err != nil {
				if ctx.Err() != nil {
					return nil, &scraper.CrawlError{Op: "page loop", Err: ctx.Err()}
				}
				log.Warn("⚠️ Skipping listing page", zap.Int("page", n), zap.Error(err))
				continue
			}
		}

		links := seen.FilterNew(CollectLinks(page))
		log.Info("🔍 Listing page scanned", zap.Int("page", n), zap.Int("new_links", len(links)))

		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return nil, &scraper.CrawlError{Op: "extract", Err: err}
			}
			if !s.opts.Politeness.IsAllowed(ctx, link) {
				log.Info("🚫 Disallowed by robots.txt", zap.String("link", link))
				continue
			}
			if err := s.opts.Politeness.Wait(ctx, link); err != nil {
				return nil, &scraper.CrawlError{Op: "extract", Err: err}
			}

			job, err := s.extractor.Extract(ctx, page, link)
			if err != nil {
				return nil, &scraper.CrawlError{Op: "extract", Err: err}
			}
			if job == nil {
				continue
			}
			jobs = append(jobs, *job)
			if limitReached() {
				log.Info("✅ Job limit reached", zap.Int("max_jobs", q.MaxJobs))
				break pages
			}
		}
	}

	return jobs, nil
}

// openListing navigates to a listing page and waits until it has a body.
func (s *Scraper) openListing(ctx context.Context, page browser.Page, listingURL string) error {
	if err := s.opts.Politeness.Wait(ctx, listingURL); err != nil {
		return err
	}
	if err := page.Navigate(ctx, listingURL); err != nil {
		return err
	}
	return page.WaitForPresence(ctx, "body", s.opts.Timeout)
}

func (s *Scraper) captureFailure(page browser.Page, cause error) {
	if s.opts.Screenshots == nil {
		return
	}
	if _, err := s.opts.Screenshots.CaptureAndLog(page, "karriere-first-page", "🚨 karriere.at: first listing page failed"); err != nil {
		s.log.Warn("⚠️ Screenshot failed", zap.Error(err), zap.NamedError("cause", cause))
	}
}
