package karriere

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/utils"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// posting holds the fields read from a schema.org JobPosting. Empty means unset.
type posting struct {
	Title       string
	Company     string
	Location    string
	PostedAt    string
	Description string
}

// parseJobPosting decodes one JSON-LD block and returns the first JobPosting
// in it. found is false when the block is valid but holds no posting.
func parseJobPosting(raw string) (p posting, found bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return posting{}, false, nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return posting{}, false, fmt.Errorf("%w: %v", scraper.ErrParse, err)
	}

	node := findJobPosting(data)
	if node == nil {
		return posting{}, false, nil
	}
	return postingFrom(node), true, nil
}

func findJobPosting(data any) map[string]any {
	var candidates []any
	switch v := data.(type) {
	case []any:
		candidates = v
	case map[string]any:
		candidates = []any{v}
	}

	for _, c := range candidates {
		item, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if graph, ok := item["@graph"].([]any); ok {
			for _, g := range graph {
				if node, ok := g.(map[string]any); ok && isJobPosting(node) {
					return node
				}
			}
		}
		if isJobPosting(item) {
			return item
		}
	}
	return nil
}

// isJobPosting accepts "@type": "JobPosting" as well as ["JobPosting", ...].
func isJobPosting(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func postingFrom(node map[string]any) posting {
	p := posting{
		Title:    utils.VisibleText(stringField(node, "title")),
		PostedAt: utils.VisibleText(stringField(node, "datePosted")),
	}

	switch org := node["hiringOrganization"].(type) {
	case map[string]any:
		p.Company = utils.VisibleText(stringField(org, "name"))
	case string:
		p.Company = utils.VisibleText(org)
	}

	loc := node["jobLocation"]
	if list, ok := loc.([]any); ok {
		loc = nil
		if len(list) > 0 {
			loc = list[0]
		}
	}
	if place, ok := loc.(map[string]any); ok {
		if addr, ok := place["address"].(map[string]any); ok {
			p.Location = utils.VisibleText(stringField(addr, "addressLocality"))
			if p.Location == "" {
				p.Location = utils.VisibleText(stringField(addr, "addressRegion"))
			}
		}
	}

	if desc := stringField(node, "description"); desc != "" {
		p.Description = utils.HTMLToText(desc)
	}
	return p
}

func stringField(node map[string]any, key string) string {
	s, _ := node[key].(string)
	return s
}
