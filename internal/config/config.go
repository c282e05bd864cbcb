// Load envs from .env
// Load YAML config
// Override with environment variables
// Provide default values
// Validate config

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "configs/config.yaml"
	DefaultChromeArgs = "--headless=new --no-sandbox --disable-dev-shm-usage --window-size=1366,768"
	DefaultBaseURL    = "https://www.karriere.at/jobs"
	DefaultUserAgent  = "karriere-scraper/1.0"

	EnginePlaywright = "playwright"
	EngineStatic     = "static"

	MaxPageLimit = 50
	MaxJobsLimit = 2000
)

type Config struct {
	//Browser
	TimeoutSec   int    `yaml:"timeout_sec" envconfig:"SEL_TIMEOUT_SEC"`
	ChromeArgs   string `yaml:"chrome_args" envconfig:"SELENIUM_CHROME_ARGS"`
	RenderEngine string `yaml:"render_engine" envconfig:"RENDER_ENGINE"`
	UserAgent    string `yaml:"user_agent" envconfig:"USER_AGENT"`
	//Crawl
	BaseURL          string  `yaml:"base_url" envconfig:"KARRIERE_BASE_URL"`
	PageLimitDefault int     `yaml:"page_limit_default" envconfig:"PAGE_LIMIT_DEFAULT"`
	NavRatePerSec    float64 `yaml:"nav_rate_per_sec" envconfig:"NAV_RATE_PER_SEC"`
	RespectRobots    bool    `yaml:"respect_robots" envconfig:"RESPECT_ROBOTS"`
	//Server
	Port     int    `yaml:"port" envconfig:"PORT"`
	APIToken string `yaml:"api_token" envconfig:"API_TOKEN"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	//Paths
	ConsentCookiesPath string `yaml:"consent_cookies_path" envconfig:"CONSENT_COOKIES_PATH"`
	DebugScreenshots   bool   `yaml:"debug_screenshots" envconfig:"DEBUG_SCREENSHOTS"`
	ScreenshotDir      string `yaml:"screenshot_dir" envconfig:"SCREENSHOT_DIR"`
	//Notifications, optional
	TelegramToken  string `yaml:"telegram_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" envconfig:"TELEGRAM_CHAT_ID"`
}

// Load reads .env, then the YAML file at CONFIG_PATH, then the environment.
// Environment variables win over the file; defaults fill what is left.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 20
	}
	if c.ChromeArgs == "" {
		c.ChromeArgs = DefaultChromeArgs
	}
	if c.RenderEngine == "" {
		c.RenderEngine = EnginePlaywright
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PageLimitDefault == 0 {
		c.PageLimitDefault = 3
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "logs/screenshots"
	}
}

func (c *Config) Validate() error {
	if c.TimeoutSec < 1 {
		return fmt.Errorf("SEL_TIMEOUT_SEC must be at least 1, got %d", c.TimeoutSec)
	}
	if c.PageLimitDefault < 1 || c.PageLimitDefault > MaxPageLimit {
		return fmt.Errorf("PAGE_LIMIT_DEFAULT must be between 1 and %d, got %d", MaxPageLimit, c.PageLimitDefault)
	}
	if c.RenderEngine != EnginePlaywright && c.RenderEngine != EngineStatic {
		return fmt.Errorf("RENDER_ENGINE must be %q or %q, got %q", EnginePlaywright, EngineStatic, c.RenderEngine)
	}
	if c.NavRatePerSec < 0 {
		return fmt.Errorf("NAV_RATE_PER_SEC must not be negative, got %v", c.NavRatePerSec)
	}
	return nil
}

// Timeout is the per-operation browser timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CrawlerUserAgent is the user agent for robots.txt and static fetches.
// UserAgent itself stays empty unless set, so Chromium keeps its own.
func (c *Config) CrawlerUserAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
