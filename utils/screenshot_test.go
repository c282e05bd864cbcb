package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeShooter struct {
	paths []string
	err   error
}

func (f *fakeShooter) Screenshot(path string) error {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

func newTestDebugger(t *testing.T) *ScreenShotDebugger {
	t.Helper()
	d := NewScreenShotDebugger(t.TempDir(), zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return d
}

func TestCaptureAndLog_WritesFile(t *testing.T) {
	d := newTestDebugger(t)
	shooter := &fakeShooter{}

	path, err := d.CaptureAndLog(shooter, "karriere-first-page", "first page failed")
	require.NoError(t, err)

	assert.Equal(t, "karriere-first-page_2026-01-02_03-04-05.png", filepath.Base(path))
	assert.FileExists(t, path)
	assert.Len(t, shooter.paths, 1)
}

func TestCaptureAndLog_SkipsPagesWithoutScreenshots(t *testing.T) {
	d := newTestDebugger(t)

	path, err := d.CaptureAndLog(struct{}{}, "static", "ignored")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestCaptureAndLog_PropagatesError(t *testing.T) {
	d := newTestDebugger(t)
	shooter := &fakeShooter{err: errors.New("page closed")}

	_, err := d.CaptureAndLog(shooter, "broken", "boom")
	assert.EqualError(t, err, "page closed")
}
