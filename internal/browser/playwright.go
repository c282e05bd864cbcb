package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"go-karriere-scraper/utils"
)

// LaunchOptions is the Chromium launch configuration derived from a
// whitespace-separated flag string.
type LaunchOptions struct {
	Headless bool
	Viewport *playwright.Size
	Args     []string
}

// ParseChromeArgs splits raw into launch options. Headless and window-size
// flags are mapped onto playwright's own options, everything else is passed
// through to Chromium untouched.
func ParseChromeArgs(raw string) LaunchOptions {
	var opts LaunchOptions
	for _, arg := range strings.Fields(raw) {
		switch {
		case arg == "--headless" || strings.HasPrefix(arg, "--headless="):
			opts.Headless = true
		case strings.HasPrefix(arg, "--window-size="):
			if size, ok := parseWindowSize(strings.TrimPrefix(arg, "--window-size=")); ok {
				opts.Viewport = size
				continue
			}
			opts.Args = append(opts.Args, arg)
		default:
			opts.Args = append(opts.Args, arg)
		}
	}
	return opts
}

func parseWindowSize(v string) (*playwright.Size, bool) {
	w, h, found := strings.Cut(v, ",")
	if !found {
		return nil, false
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return nil, false
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return nil, false
	}
	return &playwright.Size{Width: width, Height: height}, true
}

// PlaywrightManager owns one playwright driver and Chromium process. The
// process is started on first use and shared; every session gets its own
// BrowserContext, so cookies and pages never leak between crawls.
type PlaywrightManager struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser

	launch    LaunchOptions
	timeout   time.Duration
	userAgent string
	cookies   []playwright.OptionalCookie
	log       *zap.Logger
}

func NewPlaywright(launch LaunchOptions, timeout time.Duration, userAgent string, cookies []playwright.OptionalCookie, log *zap.Logger) *PlaywrightManager {
	return &PlaywrightManager{
		launch:    launch,
		timeout:   timeout,
		userAgent: userAgent,
		cookies:   cookies,
		log:       log,
	}
}

func (pm *PlaywrightManager) start() (playwright.Browser, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.browser != nil && pm.browser.IsConnected() {
		return pm.browser, nil
	}

	if pm.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright: %w", err)
		}
		pm.pw = pw
	}

	b, err := pm.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(pm.launch.Headless),
		Args:     pm.launch.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}
	pm.browser = b
	pm.log.Info("🌐 Chromium launched",
		zap.Bool("headless", pm.launch.Headless),
		zap.Strings("args", pm.launch.Args))
	return b, nil
}

// NewContext opens an isolated browser context seeded with cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	b, err := pm.start()
	if err != nil {
		return nil, err
	}

	opts := playwright.BrowserNewContextOptions{Viewport: pm.launch.Viewport}
	if pm.userAgent != "" {
		opts.UserAgent = playwright.String(pm.userAgent)
	}
	bctx, err := b.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			pm.log.Warn("⚠️ Could not add cookies to context", zap.Error(err))
		}
	}
	return bctx, nil
}

func (pm *PlaywrightManager) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := pm.NewContext(pm.cookies)
	if err != nil {
		return nil, err
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	ms := float64(pm.timeout.Milliseconds())
	page.SetDefaultTimeout(ms)
	page.SetDefaultNavigationTimeout(ms)

	return &playwrightSession{
		bctx: bctx,
		page: &playwrightPage{page: page, timeout: pm.timeout},
	}, nil
}

// Close stops Chromium and the playwright driver.
func (pm *PlaywrightManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var errs []error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		pm.browser = nil
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		pm.pw = nil
	}
	return errors.Join(errs...)
}

type playwrightSession struct {
	bctx playwright.BrowserContext
	page *playwrightPage
	once sync.Once
	err  error
}

func (s *playwrightSession) Page() Page {
	return s.page
}

// Close releases the context and with it the page; later calls are no-ops.
func (s *playwrightSession) Close() error {
	s.once.Do(func() {
		s.err = s.bctx.Close()
	})
	return s.err
}

type playwrightPage struct {
	page    playwright.Page
	timeout time.Duration
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(boundedMillis(ctx, p.timeout)),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, url, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
}

func (p *playwrightPage) WaitForPresence(ctx context.Context, selector string, timeout time.Duration) error {
	return p.waitFor(ctx, selector, timeout, playwright.WaitForSelectorStateAttached)
}

func (p *playwrightPage) WaitForVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.waitFor(ctx, selector, timeout, playwright.WaitForSelectorStateVisible)
}

func (p *playwrightPage) waitFor(ctx context.Context, selector string, timeout time.Duration, state *playwright.WaitForSelectorState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   state,
		Timeout: playwright.Float(boundedMillis(ctx, timeout)),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %q: %v", ErrTimeout, selector, err)
	}
	return err
}

func (p *playwrightPage) FindAll(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, playwrightElement{handle: h})
	}
	return elements, nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

// Screenshot implements utils.Screenshotter.
func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// boundedMillis caps timeout by the context deadline, if any.
func boundedMillis(ctx context.Context, timeout time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = max(left, time.Millisecond)
		}
	}
	return float64(timeout.Milliseconds())
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e playwrightElement) Text() (string, error) {
	text, err := e.handle.InnerText()
	if err != nil {
		return "", err
	}
	return utils.VisibleText(text), nil
}

func (e playwrightElement) TextContent() (string, error) {
	return e.handle.TextContent()
}

// Attribute treats an empty value as absent; playwright reports a missing
// attribute as "".
func (e playwrightElement) Attribute(name string) (string, bool, error) {
	val, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", false, err
	}
	return val, val != "", nil
}

func (e playwrightElement) Click(timeout time.Duration) error {
	return e.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}
