package integrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySizeCache(t *testing.T) {
	c := NewMemorySizeCache()

	_, ok := c.Get("/img/a.png")
	assert.False(t, ok)

	require.NoError(t, c.Set("/img/a.png", data.Size{W: 3, H: 4}))
	size, ok := c.Get("/img/a.png")
	assert.True(t, ok)
	assert.Equal(t, data.Size{W: 3, H: 4}, size)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Invalidate("/img/a.png"))
	_, ok = c.Get("/img/a.png")
	assert.False(t, ok)
}

func TestFileSizeCache_SidecarPath(t *testing.T) {
	c := NewFileSizeCache("/images", "/cache")

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"top level", "/images/comic.png", "/cache/comic.png.size.json"},
		{"nested", "/images/2016/comic.jpg", "/cache/2016/comic.jpg.size.json"},
		{"outside root", "/elsewhere/comic.png", "/cache/comic.png.size.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), c.SidecarPath(filepath.FromSlash(tt.src)))
		})
	}
}

func TestFileSizeCache_RoundTrip(t *testing.T) {
	root := t.TempDir()
	c := NewFileSizeCache(root, t.TempDir())
	src := filepath.Join(root, "2017", "page.png")

	_, ok := c.Get(src)
	assert.False(t, ok)

	require.NoError(t, c.Set(src, data.Size{W: 640, H: 480}))
	size, ok := c.Get(src)
	assert.True(t, ok)
	assert.Equal(t, data.Size{W: 640, H: 480}, size)

	require.NoError(t, c.Invalidate(src))
	_, ok = c.Get(src)
	assert.False(t, ok)
	require.NoError(t, c.Invalidate(src), "invalidating a missing sidecar is not an error")
}

func TestFileSizeCache_BadSidecars(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "garbage"},
		{"zero width", `{"w":0,"h":10}`},
		{"wrong type", `{"w":"wide","h":10}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			c := NewFileSizeCache(root, t.TempDir())
			src := filepath.Join(root, "page.png")
			require.NoError(t, os.WriteFile(c.SidecarPath(src), []byte(tt.content), 0644))

			_, ok := c.Get(src)
			assert.False(t, ok)
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")

	require.NoError(t, writeFileAtomic(dest, func(f *os.File) error {
		_, err := f.Write([]byte("first"))
		return err
	}))

	err := writeFileAtomic(dest, func(f *os.File) error {
		f.Write([]byte("partial"))
		return os.ErrClosed
	})
	assert.ErrorIs(t, err, os.ErrClosed)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content), "failed writes leave the previous file intact")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
