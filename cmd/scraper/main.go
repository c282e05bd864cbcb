package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-karriere-scraper/internal/app"
	"go-karriere-scraper/internal/config"
	"go-karriere-scraper/internal/logging"
	"go-karriere-scraper/internal/scraper"
	"go-karriere-scraper/internal/telegram"
)

type options struct {
	configPath string
	field      string
	region     string
	pageLimit  int
	maxJobs    int
	out        string
	notify     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "karriere-scraper",
		Short: "Crawl karriere.at search results into JSON",
		Long: `Crawl up to --page-limit karriere.at result pages for a field and region
and print the extracted jobs as JSON.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file (default "+config.DefaultConfigPath+")")
	f.StringVar(&opts.field, "field", "", "job field, e.g. \"IT, EDV\"")
	f.StringVar(&opts.region, "region", "", "region, e.g. \"Wien\"")
	f.IntVar(&opts.pageLimit, "page-limit", 0, "result pages to visit (default PAGE_LIMIT_DEFAULT)")
	f.IntVar(&opts.maxJobs, "max-jobs", 0, "stop after this many jobs (0 = no limit)")
	f.StringVar(&opts.out, "out", "", "write the result JSON to this file instead of stdout")
	f.BoolVar(&opts.notify, "notify", false, "send the result to Telegram")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func (o *options) validate(cmd *cobra.Command) error {
	if o.field == "" || o.region == "" {
		return errors.New("--field and --region must not be empty")
	}
	if cmd.Flags().Changed("page-limit") && (o.pageLimit < 1 || o.pageLimit > config.MaxPageLimit) {
		return fmt.Errorf("--page-limit must be between 1 and %d", config.MaxPageLimit)
	}
	if o.maxJobs < 0 || o.maxJobs > config.MaxJobsLimit {
		return fmt.Errorf("--max-jobs must be between 0 (no limit) and %d", config.MaxJobsLimit)
	}
	return nil
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", opts.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var bot *telegram.Bot
	if opts.notify {
		if !cfg.TelegramEnabled() {
			return errors.New("--notify needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
		if bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID); err != nil {
			return err
		}
		logger.Info("🤖 Telegram Bot initialized.")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("⚠️ Failed to shut down browser", zap.Error(err))
		}
	}()

	q := scraper.Query{
		Field:     opts.field,
		Region:    opts.region,
		PageLimit: cfg.PageLimitDefault,
		MaxJobs:   opts.maxJobs,
	}
	if opts.pageLimit > 0 {
		q.PageLimit = opts.pageLimit
	}

	result, err := a.Crawler.Crawl(ctx, q)
	if err != nil {
		logger.Error("❌ Crawl failed", zap.Error(err))
		if bot != nil {
			if sendErr := bot.SendError(err); sendErr != nil {
				logger.Warn("⚠️ Failed to report error to Telegram", zap.Error(sendErr))
			}
		}
		return err
	}

	if err := writeResult(result, opts.out, stdout); err != nil {
		return err
	}
	logger.Info("📦 Jobs collected", zap.Int("count", result.Count))

	if bot != nil {
		if err := bot.NotifyResult(result); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		logger.Info("✅ Result sent to Telegram")
	}
	return nil
}

func writeResult(result *scraper.Result, path string, stdout io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
