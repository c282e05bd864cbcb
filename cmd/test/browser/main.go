// Manual smoke check: open the first karriere.at result page with the
// configured engine and list the job links found on it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"go-karriere-scraper/internal/app"
	"go-karriere-scraper/internal/config"
	"go-karriere-scraper/internal/scraper/karriere"
	"go-karriere-scraper/utils"
)

func main() {
	fmt.Println("🌐 Testing browser session...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	field, region := "IT", "Wien"
	if len(os.Args) == 3 {
		field, region = os.Args[1], os.Args[2]
	}

	logger := zap.NewExample()
	launcher, closeFn, err := app.NewLauncher(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create launcher: %v", err)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	session, err := launcher.NewSession(ctx)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Close()
	page := session.Page()
	fmt.Printf("✅ %s session started\n", cfg.RenderEngine)

	target := karriere.SearchURL(cfg.BaseURL, field, region, 1)
	fmt.Printf("🔍 Navigating to %s...\n", target)
	if err := page.Navigate(ctx, target); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	fmt.Printf("🍪 Consent dismissed: %t\n", karriere.DismissConsent(ctx, page, logger))

	links := karriere.CollectLinks(page)
	fmt.Printf("✅ Found %d job links\n", len(links))
	for _, l := range links {
		fmt.Println("   " + l)
	}

	shot, err := utils.NewScreenShotDebugger(cfg.ScreenshotDir, logger).CaptureAndLog(page, "smoke-listing", "Listing page")
	if err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	} else if shot != "" {
		fmt.Println("📸 Screenshot saved: " + shot)
	}
	fmt.Println("✨ Test complete!")
}
