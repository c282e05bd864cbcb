package main

import (
	"fmt"
	"log"

	"go-karriere-scraper/internal/config"
)

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "..."
}

func main() {
	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Engine: %s (timeout %s)\n", cfg.RenderEngine, cfg.Timeout())
	fmt.Printf("   Chrome Args: %s\n", cfg.ChromeArgs)
	fmt.Printf("   Base URL: %s\n", cfg.BaseURL)
	fmt.Printf("   Page Limit Default: %d\n", cfg.PageLimitDefault)
	fmt.Printf("   Politeness: %.2f nav/s, robots=%t\n", cfg.NavRatePerSec, cfg.RespectRobots)
	if cfg.APIToken != "" {
		fmt.Printf("   API Token: %s\n", mask(cfg.APIToken))
	}
	fmt.Printf("   Telegram: %t\n", cfg.TelegramEnabled())
	fmt.Printf("   Consent Cookies Path: %s\n", cfg.ConsentCookiesPath)
}
