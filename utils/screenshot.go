package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Screenshotter is implemented by pages that can render themselves to a PNG file.
type Screenshotter interface {
	Screenshot(path string) error
}

// ScreenShotDebugger handles debug screenshots
type ScreenShotDebugger struct {
	outputDir string
	log       *zap.Logger
	now       func() time.Time
}

func NewScreenShotDebugger(outputDir string, log *zap.Logger) *ScreenShotDebugger {
	if outputDir == "" {
		outputDir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenShotDebugger{
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}
}

// CaptureAndLog saves a screenshot of page if it supports it. Pages that
// cannot render (the static engine) are skipped without error.
func (s *ScreenShotDebugger) CaptureAndLog(page any, name, message string) (string, error) {
	shooter, ok := page.(Screenshotter)
	if !ok {
		return "", nil
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	timestamp := s.now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Info("📸 "+message, zap.String("name", name))

	if err := shooter.Screenshot(path); err != nil {
		s.log.Warn("⚠️ Failed to capture screenshot", zap.Error(err))
		return "", err
	}

	s.log.Info("   Screenshot saved", zap.String("path", path))
	return path, nil
}
