package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseChromeArgs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		headless bool
		viewport *playwright.Size
		args     []string
	}{
		{
			name:     "default flags",
			raw:      "--headless=new --no-sandbox --disable-dev-shm-usage --window-size=1366,768",
			headless: true,
			viewport: &playwright.Size{Width: 1366, Height: 768},
			args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
		},
		{
			name:     "headed",
			raw:      "  --no-sandbox   ",
			headless: false,
			args:     []string{"--no-sandbox"},
		},
		{
			name:     "bare headless",
			raw:      "--headless",
			headless: true,
		},
		{
			name: "malformed window size passes through",
			raw:  "--window-size=big",
			args: []string{"--window-size=big"},
		},
		{
			name: "empty",
			raw:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ParseChromeArgs(tt.raw)
			assert.Equal(t, tt.headless, opts.Headless)
			assert.Equal(t, tt.viewport, opts.Viewport)
			assert.Equal(t, tt.args, opts.Args)
		})
	}
}

func TestBoundedMillis(t *testing.T) {
	assert.Equal(t, float64(2000), boundedMillis(context.Background(), 2*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.LessOrEqual(t, boundedMillis(ctx, 20*time.Second), float64(500))
}

// integration test: needs installed playwright browsers
func TestPlaywrightSession_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("PLAYWRIGHT_INTEGRATION") == "" {
		t.Skip("set PLAYWRIGHT_INTEGRATION=1 to run against a real Chromium")
	}

	pm := NewPlaywright(ParseChromeArgs("--headless=new --no-sandbox"), 20*time.Second, "", nil, zap.NewNop())
	defer pm.Close()

	session, err := pm.NewSession(context.Background())
	require.NoError(t, err)
	defer session.Close()

	page := session.Page()
	ctx := context.Background()
	require.NoError(t, page.Navigate(ctx, "data:text/html,<h1> Hallo   Welt </h1><a href='/jobs/1'>x</a><button id='hidden' style='display:none'>OK</button>"))
	require.NoError(t, page.WaitForPresence(ctx, "h1", 5*time.Second))

	h1, err := page.FindAll("h1")
	require.NoError(t, err)
	require.Len(t, h1, 1)
	text, err := h1[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", text)

	err = page.WaitForPresence(ctx, "#missing", 200*time.Millisecond)
	assert.True(t, IsTimeout(err))

	// attached but hidden: visible wait and click both give up quickly
	require.NoError(t, page.WaitForPresence(ctx, "#hidden", time.Second))
	assert.True(t, IsTimeout(page.WaitForVisible(ctx, "#hidden", 200*time.Millisecond)))
	hidden, err := page.FindAll("#hidden")
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	start := time.Now()
	assert.Error(t, hidden[0].Click(300*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)
}
