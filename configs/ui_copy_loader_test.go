package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUICopyMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui_copy.yaml")
	content := "widget:\n  greeting: \"Welcome back\"\ndashboard:\n  range_days: 14\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadUICopy(path)
	require.NoError(t, err)

	assert.Equal(t, "Welcome back", c.Widget.Greeting)
	assert.Equal(t, 14, c.Dashboard.RangeDays)
	// 未設定の項目はデフォルト値
	assert.Equal(t, "regular_day", c.Dashboard.DefaultEvent)
	assert.Equal(t, "sunny", c.Dashboard.DefaultWeather)
	assert.NotEmpty(t, c.Widget.ConnectionFailure)
}

func TestLoadUICopyMissingFile(t *testing.T) {
	_, err := LoadUICopy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadUICopyInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("widget: [unterminated"), 0o644))

	_, err := LoadUICopy(path)
	assert.Error(t, err)
}

func TestBundledUICopyParses(t *testing.T) {
	c, err := LoadUICopy("ui_copy.yaml")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Dashboard.RangeDays)
	assert.Equal(t, DefaultUICopy().Widget.StatusAvailable, c.Widget.StatusAvailable)
}
