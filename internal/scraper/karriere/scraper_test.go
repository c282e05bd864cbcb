package karriere

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/browser/browsertest"
	"go-karriere-scraper/internal/scraper"
)

func listingCalls(f *browsertest.Fetcher) int {
	return f.CallCount(listing1) + f.CallCount(listing2) + f.CallCount(listing3)
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		field, region string
		page          int
		want          string
	}{
		{"IT", "Wien", 1, "https://www.karriere.at/jobs/IT/Wien"},
		{"IT", "Wien", 2, "https://www.karriere.at/jobs/IT/Wien?page=2"},
		{"Software Entwicklung", "Niederösterreich", 1, "https://www.karriere.at/jobs/Software%20Entwicklung/Nieder%C3%B6sterreich"},
		{"a/b", "", 0, "https://www.karriere.at/jobs/a%2Fb/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchURL(testBase+"/", tt.field, tt.region, tt.page))
	}
}

func TestScrape_FullCrawl(t *testing.T) {
	f := newFixture()
	ext := newCountingExtractor()

	jobs, err := newTestScraper(ext).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 2})
	require.NoError(t, err)

	// job3 times out and is skipped; job2 on page 2 is a duplicate
	require.Len(t, jobs, 2)
	assert.Equal(t, job1, jobs[0].Link)
	assert.Equal(t, "Go Developer", *jobs[0].Title)
	assert.Equal(t, job2, jobs[1].Link)
	assert.Nil(t, jobs[1].Location)

	assert.Equal(t, []string{job1, job2, job3}, ext.calls)
	assert.Equal(t, 1, f.CallCount(listing1))
	assert.Equal(t, 1, f.CallCount(listing2))
}

func TestScrape_ListingNavigationsBoundedByPageLimit(t *testing.T) {
	for _, limit := range []int{1, 2, 3} {
		f := newFixture()
		_, err := newTestScraper(nil).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: limit})
		require.NoError(t, err)
		assert.LessOrEqual(t, listingCalls(f), limit, "page limit %d", limit)
	}
}

func TestScrape_MissingLaterPageIsSkipped(t *testing.T) {
	f := newFixture()

	// listing3 has no fixture and fails to load
	jobs, err := newTestScraper(nil).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 3})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 1, f.CallCount(listing3))
}

func TestScrape_ZeroPageLimitVisitsFirstPage(t *testing.T) {
	f := newFixture()
	jobs, err := newTestScraper(nil).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 0, f.CallCount(listing2))
}

func TestScrape_MaxJobsStopsBothLoops(t *testing.T) {
	for _, maxJobs := range []int{1, 2} {
		f := newFixture()
		ext := newCountingExtractor()

		jobs, err := newTestScraper(ext).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 3, MaxJobs: maxJobs})
		require.NoError(t, err)

		assert.Len(t, jobs, maxJobs)
		assert.Len(t, ext.calls, maxJobs)
		assert.Equal(t, 0, f.CallCount(listing2), "no further listing pages once the limit is hit")
	}
}

func TestScrape_FirstPageFailureIsFatal(t *testing.T) {
	f := browsertest.NewFetcher()

	jobs, err := newTestScraper(nil).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 2})
	assert.Nil(t, jobs)
	assert.ErrorIs(t, err, browser.ErrNavigation)

	var crawlErr *scraper.CrawlError
	require.ErrorAs(t, err, &crawlErr)
	assert.Equal(t, "first page", crawlErr.Op)
}

func TestScrape_FirstPageTimeoutIsFatal(t *testing.T) {
	f := browsertest.NewFetcher().Fail(listing1, browser.ErrTimeout)

	_, err := newTestScraper(nil).Scrape(context.Background(), newTestPage(f), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 1})
	assert.ErrorIs(t, err, browser.ErrTimeout)
}

// cancellingExtractor cancels the crawl after its first extraction.
type cancellingExtractor struct {
	countingExtractor
	cancel context.CancelFunc
}

func (c *cancellingExtractor) Extract(ctx context.Context, page browser.Page, link string) (*scraper.Job, error) {
	job, err := c.countingExtractor.Extract(ctx, page, link)
	c.cancel()
	return job, err
}

func TestScrape_CancellationBetweenLinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ext := &cancellingExtractor{countingExtractor: *newCountingExtractor(), cancel: cancel}

	jobs, err := newTestScraper(ext).Scrape(ctx, newTestPage(newFixture()), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 2})
	assert.Nil(t, jobs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ext.calls, 1)
}

// panicPage blows up on the second listing navigation.
type panicPage struct {
	*browser.DocumentPage
	listings int
}

func (p *panicPage) Navigate(ctx context.Context, url string) error {
	if url == listing1 || url == listing2 {
		p.listings++
		if p.listings == 2 {
			panic("renderer crashed")
		}
	}
	return p.DocumentPage.Navigate(ctx, url)
}

type countingSession struct {
	page   browser.Page
	mu     sync.Mutex
	closes int
}

func (s *countingSession) Page() browser.Page { return s.page }

func (s *countingSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

type staticLauncher struct {
	session *countingSession
}

func (l staticLauncher) NewSession(ctx context.Context) (browser.Session, error) {
	return l.session, nil
}

func TestCrawl_PanicOnSecondListingReleasesSessionOnce(t *testing.T) {
	session := &countingSession{page: &panicPage{DocumentPage: newTestPage(newFixture())}}
	crawler := scraper.NewCrawler(staticLauncher{session: session}, newTestScraper(nil), zap.NewNop())

	res, err := crawler.Crawl(context.Background(), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 2})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, scraper.ErrPanic)
	assert.Equal(t, 1, session.closes)
}

func TestCrawl_EndToEndResult(t *testing.T) {
	launcher := browser.NewDocumentLauncher(newFixture(), time.Second)
	crawler := scraper.NewCrawler(launcher, newTestScraper(nil), zap.NewNop())

	before := time.Now().Unix()
	res, err := crawler.Crawl(context.Background(), scraper.Query{Field: "IT", Region: "Wien", PageLimit: 2, MaxJobs: 5})
	require.NoError(t, err)

	assert.Equal(t, "IT", res.Field)
	assert.Equal(t, "Wien", res.Region)
	assert.Equal(t, len(res.Jobs), res.Count)
	assert.Equal(t, 2, res.Count)
	assert.GreaterOrEqual(t, res.Meta.Timestamp, before)
}
