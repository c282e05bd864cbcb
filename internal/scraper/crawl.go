package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
)

// Crawler runs one Scraper per call inside a fresh browser session.
type Crawler struct {
	launcher browser.Launcher
	scraper  Scraper
	log      *zap.Logger
	now      func() time.Time
}

func NewCrawler(launcher browser.Launcher, s Scraper, log *zap.Logger) *Crawler {
	return &Crawler{
		launcher: launcher,
		scraper:  s,
		log:      log,
		now:      time.Now,
	}
}

// Crawl returns either a complete Result or a *CrawlError, never both. The
// session is released exactly once on every path, panics included.
func (c *Crawler) Crawl(ctx context.Context, q Query) (result *Result, err error) {
	if q.PageLimit < 1 {
		q.PageLimit = 1
	}
	log := c.log.With(zap.String("scraper", c.scraper.Name()),
		zap.String("field", q.Field), zap.String("region", q.Region))

	session, err := c.launcher.NewSession(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &CrawlError{Op: "launch", Err: ctx.Err()}
		}
		return nil, &CrawlError{Op: "launch", Err: fmt.Errorf("%w: %w", ErrStartup, err)}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("⚠️ Failed to release browser session", zap.Error(cerr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("💥 Crawl panicked", zap.Any("panic", r))
			result = nil
			err = &CrawlError{Op: "scrape", Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	start := c.now()
	log.Info("🚀 Starting crawl", zap.Int("page_limit", q.PageLimit), zap.Int("max_jobs", q.MaxJobs))

	jobs, err := c.scraper.Scrape(ctx, session.Page(), q)
	if err != nil {
		var crawlErr *CrawlError
		if errors.As(err, &crawlErr) {
			return nil, crawlErr
		}
		return nil, &CrawlError{Op: "scrape", Err: err}
	}
	if jobs == nil {
		jobs = []Job{}
	}

	finished := c.now()
	log.Info("🏁 Crawl finished", zap.Int("jobs", len(jobs)), zap.Duration("took", finished.Sub(start)))

	return &Result{
		Field:  q.Field,
		Region: q.Region,
		Count:  len(jobs),
		Jobs:   jobs,
		Meta:   Meta{Timestamp: finished.Unix()},
	}, nil
}
