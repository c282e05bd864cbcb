// Package politeness throttles navigations per host and consults robots.txt
// before detail pages are visited. Both checks are off unless configured.
package politeness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRobotsBodyBytes = 512 * 1024

type Options struct {
	// RatePerSec is the navigation rate per host. Zero or less disables throttling.
	RatePerSec float64
	// RespectRobots enables the robots.txt gate in IsAllowed.
	RespectRobots bool
	UserAgent     string
	Timeout       time.Duration
}

// DomainManager holds a limiter and a cached robots.txt per host. It is safe
// for concurrent use.
type DomainManager struct {
	opts   Options
	client *http.Client
	log    *zap.Logger

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.RobotsData
}

func NewDomainManager(opts Options, log *zap.Logger) *DomainManager {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &DomainManager{
		opts:        opts,
		client:      &http.Client{Timeout: opts.Timeout},
		log:         log,
		limiters:    make(map[string]*rate.Limiter),
		robotsCache: make(map[string]*robotstxt.RobotsData),
	}
}

// Wait blocks until the host of targetURL may be navigated to again.
func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	if d == nil || d.opts.RatePerSec <= 0 {
		return nil
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(u.Host)

	d.mu.Lock()
	limiter, exists := d.limiters[host]
	if !exists {
		// burst of 1: the first navigation goes through, the next one waits
		limiter = rate.NewLimiter(rate.Limit(d.opts.RatePerSec), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// IsAllowed reports whether robots.txt permits link for the configured user
// agent. A missing or unreadable robots.txt allows everything.
func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	if d == nil || !d.opts.RespectRobots {
		return true
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)

	d.mu.Lock()
	data, exists := d.robotsCache[host]
	d.mu.Unlock()

	if !exists {
		data = d.fetchRobots(ctx, u.Scheme, host)
		// a cancelled fetch says nothing about robots.txt; retry next time
		if ctx.Err() == nil {
			d.mu.Lock()
			d.robotsCache[host] = data
			d.mu.Unlock()
		}
	}

	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, d.opts.UserAgent)
}

func (d *DomainManager) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil
	}
	if d.opts.UserAgent != "" {
		req.Header.Set("User-Agent", d.opts.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Debug("robots.txt unavailable, allowing all", zap.String("host", host), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		d.log.Debug("robots.txt unparseable, allowing all", zap.String("host", host), zap.Error(err))
		return nil
	}
	return data
}
