package dedup

import (
	"net/url"
	"sync"
)

// LinkSet tracks canonical detail URLs already enqueued during one crawl.
// It lives only as long as the crawl that created it.
type LinkSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Canonical drops the fragment so "/jobs/1#apply" and "/jobs/1" collapse.
// Unparseable input is returned unchanged.
func Canonical(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Add records link and reports whether it was new.
// Mutex is required because Go maps are NOT thread-safe
func (s *LinkSet) Add(link string) bool {
	key := Canonical(link)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

func (s *LinkSet) Contains(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.seen[Canonical(link)]
	return exists
}

// FilterNew adds every link and returns the ones not seen before, in input order.
func (s *LinkSet) FilterNew(links []string) []string {
	var fresh []string
	for _, link := range links {
		if s.Add(link) {
			fresh = append(fresh, Canonical(link))
		}
	}
	return fresh
}

func (s *LinkSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Links returns a copy of the recorded links in first-seen order.
func (s *LinkSet) Links() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
