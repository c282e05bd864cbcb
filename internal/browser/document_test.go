package browser_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/browser/browsertest"
)

const listingHTML = `<html><body>
	<h1 class="title">  Go
		Entwickler </h1>
	<a href="/jobs/123" data-qa="first">Eins</a>
	<a href="/jobs/456">Zwei</a>
	<a>no href</a>
	<script type="application/ld+json">{"@type":"JobPosting"}</script>
</body></html>`

func TestDocumentPage_NavigateAndQuery(t *testing.T) {
	fetcher := browsertest.NewFetcher().Page("https://example.test/jobs", listingHTML)
	page := browser.NewDocumentPage(fetcher, time.Second)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, "https://example.test/jobs"))
	assert.Equal(t, "https://example.test/jobs", page.URL())
	require.NoError(t, page.WaitForPresence(ctx, "body", time.Second))

	h1, err := page.FindAll("h1")
	require.NoError(t, err)
	require.Len(t, h1, 1)
	text, err := h1[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "Go Entwickler", text)

	anchors, err := page.FindAll("a")
	require.NoError(t, err)
	require.Len(t, anchors, 3)

	href, ok, err := anchors[0].Attribute("href")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/jobs/123", href)

	_, ok, err = anchors[2].Attribute("href")
	require.NoError(t, err)
	assert.False(t, ok)

	scripts, err := page.FindAll(`script[type="application/ld+json"]`)
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	raw, err := scripts[0].TextContent()
	require.NoError(t, err)
	assert.Equal(t, `{"@type":"JobPosting"}`, raw)
}

func TestDocumentPage_WaitForMissingSelectorTimesOut(t *testing.T) {
	fetcher := browsertest.NewFetcher().Page("https://example.test/", "<html><body></body></html>")
	page := browser.NewDocumentPage(fetcher, time.Second)
	require.NoError(t, page.Navigate(context.Background(), "https://example.test/"))

	err := page.WaitForPresence(context.Background(), "#onetrust-accept-btn-handler", time.Second)
	assert.True(t, browser.IsTimeout(err))

	err = page.WaitForVisible(context.Background(), "#onetrust-accept-btn-handler", time.Second)
	assert.True(t, browser.IsTimeout(err))
	assert.NoError(t, page.WaitForVisible(context.Background(), "body", time.Second))
}

func TestDocumentPage_BeforeNavigate(t *testing.T) {
	page := browser.NewDocumentPage(browsertest.NewFetcher(), time.Second)

	elements, err := page.FindAll("a")
	assert.NoError(t, err)
	assert.Empty(t, elements)
	assert.True(t, browser.IsTimeout(page.WaitForPresence(context.Background(), "body", time.Second)))
}

func TestDocumentPage_NavigateErrors(t *testing.T) {
	fetcher := browsertest.NewFetcher().
		Fail("https://example.test/slow", fmt.Errorf("%w: deadline", browser.ErrTimeout))
	page := browser.NewDocumentPage(fetcher, time.Second)

	err := page.Navigate(context.Background(), "https://example.test/slow")
	assert.True(t, browser.IsTimeout(err))

	err = page.Navigate(context.Background(), "https://example.test/missing")
	assert.True(t, errors.Is(err, browser.ErrNavigation))
}

func TestHTTPFetcher(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body><h1>Nicht gefunden</h1></body></html>")
	}))
	defer srv.Close()

	page := browser.NewDocumentPage(browser.NewHTTPFetcher(time.Second, "test-agent/1.0"), time.Second)
	require.NoError(t, page.Navigate(context.Background(), srv.URL))
	assert.Equal(t, "test-agent/1.0", gotUA)

	h1, err := page.FindAll("h1")
	require.NoError(t, err)
	require.Len(t, h1, 1)
}

func TestHTTPFetcher_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := browser.NewHTTPFetcher(time.Second, "").Fetch(context.Background(), url)
	assert.True(t, errors.Is(err, browser.ErrNavigation))
}

func TestDocumentLauncher_IndependentSessions(t *testing.T) {
	fetcher := browsertest.NewFetcher().Page("https://example.test/", "<html><body></body></html>")
	launcher := browser.NewDocumentLauncher(fetcher, time.Second)

	a, err := launcher.NewSession(context.Background())
	require.NoError(t, err)
	b, err := launcher.NewSession(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Page().Navigate(context.Background(), "https://example.test/"))
	assert.Equal(t, "https://example.test/", a.Page().URL())
	assert.Empty(t, b.Page().URL())

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
	assert.NoError(t, b.Close())
}
