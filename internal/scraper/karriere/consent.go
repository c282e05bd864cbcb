package karriere

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/utils"
)

const (
	oneTrustButton  = "#onetrust-accept-btn-handler"
	oneTrustTimeout = 3 * time.Second
	textTimeout     = 2 * time.Second
)

// consentTexts must start the folded button label, so "ZUSTIMMEN" and
// "Akzeptieren und weiter" count while "Nicht akzeptieren" does not.
var consentTexts = []string{"Akzeptieren", "Zustimmen", "Alle akzeptieren", "Accept", "I agree"}

// consentSettle gives the banner time to disappear after a click.
var consentSettle = 300 * time.Millisecond

// DismissConsent tries to close a cookie/consent banner. It reports whether a
// button was clicked; not finding one is normal and not an error.
func DismissConsent(ctx context.Context, page browser.Page, log *zap.Logger) bool {
	strategies := []scraper.Strategy[struct{}]{
		{Name: "onetrust", Try: clickFirst(page, oneTrustButton, oneTrustTimeout, nil)},
	}
	for _, text := range consentTexts {
		want := utils.FoldText(text)
		strategies = append(strategies, scraper.Strategy[struct{}]{
			Name: "button:" + text,
			Try: clickFirst(page, "button", textTimeout, func(label string) bool {
				return strings.HasPrefix(utils.FoldText(label), want)
			}),
		})
	}

	_, name, ok := scraper.FirstMatch(ctx, strategies)
	if !ok {
		log.Debug("No consent banner found")
		return false
	}
	log.Info("🍪 Consent banner dismissed", zap.String("strategy", name))

	select {
	case <-ctx.Done():
	case <-time.After(consentSettle):
	}
	return true
}

// clickFirst clicks the first visible element matching selector (and match,
// if set). The wait and all click attempts share one timeout.
func clickFirst(page browser.Page, selector string, timeout time.Duration, match func(string) bool) func(context.Context) (struct{}, bool) {
	return func(ctx context.Context) (struct{}, bool) {
		deadline := time.Now().Add(timeout)
		if err := page.WaitForVisible(ctx, selector, timeout); err != nil {
			return struct{}{}, false
		}
		elements, err := page.FindAll(selector)
		if err != nil {
			return struct{}{}, false
		}
		for _, el := range elements {
			if match != nil {
				label, err := el.Text()
				if err != nil || !match(label) {
					continue
				}
			}
			left := time.Until(deadline)
			if left <= 0 {
				break
			}
			if err := el.Click(left); err == nil {
				return struct{}{}, true
			}
		}
		return struct{}{}, false
	}
}
