package karriere

import (
	"net/url"
	"regexp"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/dedup"
)

const anchorSelector = `a[href*="/jobs/"]`

// detailPath matches job detail pages like /jobs/7605540, not listings like /jobs/it/wien.
var detailPath = regexp.MustCompile(`/jobs/\d+(?:[/?#].*)?$`)

// CollectLinks returns the canonical detail URLs on the current listing page,
// in document order and without duplicates.
func CollectLinks(page browser.Page) []string {
	anchors, err := page.FindAll(anchorSelector)
	if err != nil {
		return nil
	}
	base, _ := url.Parse(page.URL())

	var links []string
	seen := make(map[string]struct{})
	for _, a := range anchors {
		href, ok, err := a.Attribute("href")
		if err != nil || !ok || href == "" {
			continue
		}
		link, ok := resolveDetailLink(base, href)
		if !ok {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}

func resolveDetailLink(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	abs := ref.String()
	if !detailPath.MatchString(abs) {
		return "", false
	}
	return dedup.Canonical(abs), true
}
