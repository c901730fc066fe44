package geotile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 128, cfg.Tiler.CropSize)
	assert.Equal(t, 0.5, cfg.Tiler.VisualMin)
	assert.Equal(t, 0.75, cfg.Tiler.VisualMax)
	assert.Equal(t, 90, cfg.Tiler.PreviewQuality)
	assert.NoError(t, cfg.Tiler.Validate())
	assert.NoError(t, cfg.Locator.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geotile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"log_level": "debug",
		"tiler": {"crop_size": 256, "visual_max": 0.9, "index_path": "tiles.txt"},
		"locator": {"strict_crs": true}
	}`), 0o644))
	t.Setenv("GEOTILE_TILER_VISUALMIN", "0.1")
	t.Setenv("GEOTILE_LOCATOR_MANIFESTENCODING", "GBK")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 256, cfg.Tiler.CropSize)
	assert.Equal(t, 0.1, cfg.Tiler.VisualMin)
	assert.Equal(t, 0.9, cfg.Tiler.VisualMax)
	assert.Equal(t, 90, cfg.Tiler.PreviewQuality)
	assert.Equal(t, "tiles.txt", cfg.Tiler.IndexPath)
	assert.True(t, cfg.Locator.StrictCRS)
	assert.Equal(t, "GBK", cfg.Locator.ManifestEncoding)
	assert.Equal(t, DefaultS2Level, cfg.Locator.S2Level)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, ErrConfiguration)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiler": `), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfiguration)

	t.Setenv("GEOTILE_TILER_CROPSIZE", "big")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLocatorConfigValidate(t *testing.T) {
	cfg := DefaultConfig().Locator
	cfg.S2Level = 31
	assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
	cfg = DefaultConfig().Locator
	cfg.TileDir = ""
	assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
}
