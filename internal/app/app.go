// Package app wires configuration into a ready-to-use crawler. It is shared
// by the HTTP server and the CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/browser"
	"go-karriere-scraper/internal/config"
	"go-karriere-scraper/internal/politeness"
	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/internal/scraper/karriere"
	"go-karriere-scraper/utils"
)

type App struct {
	Crawler *scraper.Crawler
	close   func() error
}

// New builds the launcher selected by RENDER_ENGINE and a karriere.at
// crawler on top of it. The browser is not started until the first crawl.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	launcher, closeFn, err := NewLauncher(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := karriere.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
		Politeness: politeness.NewDomainManager(politeness.Options{
			RatePerSec:    cfg.NavRatePerSec,
			RespectRobots: cfg.RespectRobots,
			UserAgent:     cfg.CrawlerUserAgent(),
			Timeout:       cfg.Timeout(),
		}, log.Named("politeness")),
	}
	if cfg.DebugScreenshots {
		opts.Screenshots = utils.NewScreenShotDebugger(cfg.ScreenshotDir, log)
	}

	s := karriere.New(opts, log.Named("karriere"))
	return &App{
		Crawler: scraper.NewCrawler(launcher, s, log),
		close:   closeFn,
	}, nil
}

// NewLauncher returns the configured engine and a function releasing it.
func NewLauncher(cfg *config.Config, log *zap.Logger) (browser.Launcher, func() error, error) {
	switch cfg.RenderEngine {
	case config.EngineStatic:
		fetcher := browser.NewHTTPFetcher(cfg.Timeout(), cfg.CrawlerUserAgent())
		log.Info("📄 Using static HTML engine")
		return browser.NewDocumentLauncher(fetcher, cfg.Timeout()), func() error { return nil }, nil

	case config.EnginePlaywright:
		cookies, err := browser.LoadCookies(cfg.ConsentCookiesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load consent cookies: %w", err)
		}
		if len(cookies) > 0 {
			log.Info("🍪 Loaded consent cookies", zap.Int("count", len(cookies)))
		}
		pw := browser.NewPlaywright(browser.ParseChromeArgs(cfg.ChromeArgs), cfg.Timeout(), cfg.UserAgent, cookies, log.Named("browser"))
		return pw, pw.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown render engine %q", cfg.RenderEngine)
	}
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
