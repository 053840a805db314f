package services

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		Addr:        "localhost:0",
		IndexPath:   filepath.Join(dir, "index.json"),
		UsersPath:   filepath.Join(dir, "users.json"),
		ImagesDir:   filepath.Join(dir, "images"),
		CacheDir:    filepath.Join(dir, "cache"),
		PublicDir:   filepath.Join(dir, "public"),
		PageWidth:   50,
		WarmWorkers: 2,
	}

	require.NoError(t, os.MkdirAll(cfg.ImagesDir, 0755))
	index := `[
		{"title": "One", "slug": "one", "file": "one.png"},
		{"title": "Two", "slug": "two", "file": "two.png"}
	]`
	require.NoError(t, os.WriteFile(cfg.IndexPath, []byte(index), 0644))
	require.NoError(t, os.WriteFile(cfg.UsersPath, []byte(`[{"username":"admin","password":"secret"}]`), 0644))

	for _, name := range []string{"one.png", "two.png"} {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 100, 40))))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesDir, name), buf.Bytes(), 0644))
	}
	return cfg
}

func TestNewComicController(t *testing.T) {
	cfg := testConfig(t)

	c, err := NewComicController(cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Index().Len())
	assert.True(t, c.Users().Authorize("admin", "secret"))
	assert.DirExists(t, cfg.CacheDir)
	assert.Equal(t, uint32(50), c.Pages().Width())

	page, err := c.Pages().Build("one")
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 50, H: 20}, page.Size)
	assert.Equal(t, "/r/one.png.50x20.png", page.Image)
}

func TestNewComicControllerErrors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.PageWidth = 0
		_, err := NewComicController(cfg)
		assert.Error(t, err)
	})

	t.Run("malformed index", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(cfg.IndexPath, []byte(`[{"title": "x"}]`), 0644))
		_, err := NewComicController(cfg)
		assert.ErrorIs(t, err, data.ErrInvalidIndex)
	})

	t.Run("malformed users", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(cfg.UsersPath, []byte(`{`), 0644))
		_, err := NewComicController(cfg)
		assert.Error(t, err)
	})
}

func TestComicControllerExportEPub(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewComicController(cfg)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "archive.epub")
	path, err := c.ExportEPub("Archive", out, "")
	require.NoError(t, err)
	assert.Equal(t, out, path)
	assert.FileExists(t, out)

	kindle := filepath.Join(t.TempDir(), "kindle.epub")
	_, err = c.ExportEPub("Archive", kindle, "kindle")
	require.NoError(t, err)
	assert.FileExists(t, kindle)

	_, err = c.ExportEPub("Archive", kindle, "typewriter")
	assert.ErrorContains(t, err, "unknown device")
}
