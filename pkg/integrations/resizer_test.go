package integrations

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPNG writes a w x h gradient PNG below dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func newTestResizer(t *testing.T) (*Resizer, string) {
	t.Helper()

	root := t.TempDir()
	r, err := NewResizer(root, filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return r, root
}

// cacheFiles lists every file below dir, slash-separated and relative to it.
func cacheFiles(t *testing.T, dir string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		files = append(files, filepath.ToSlash(rel))
		return err
	})
	require.NoError(t, err)
	return files
}

func decodedSize(t *testing.T, path string) data.Size {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return data.Size{W: uint32(cfg.Width), H: uint32(cfg.Height)}
}

func TestResizer_FitWidth(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "wide.png", 1600, 900)

	res, err := r.Resize("wide.png", Fit{W: 800})
	require.NoError(t, err)

	assert.Equal(t, data.Size{W: 800, H: 450}, res.Size)
	assert.Equal(t, "wide.png.800x450.png", res.RelativeURL)
	assert.Equal(t, data.Size{W: 800, H: 450}, decodedSize(t, res.Path))
}

func TestResizer_NeverEnlarges(t *testing.T) {
	r, root := newTestResizer(t)
	src := writeTestPNG(t, root, "small.png", 400, 300)

	res, err := r.Resize("small.png", Fit{W: 800})
	require.NoError(t, err)

	assert.Equal(t, data.Size{W: 400, H: 300}, res.Size)
	assert.Equal(t, "small.png", res.RelativeURL)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, want, got, "unchanged images are copied byte for byte")
	assert.Equal(t, int64(0), r.Stats().Decodes)
	assert.Equal(t, int64(1), r.Stats().Copies)
}

func TestResizer_RequiredSizeProperty(t *testing.T) {
	originals := []data.Size{{W: 1, H: 1}, {W: 3, H: 7}, {W: 640, H: 480}, {W: 1600, H: 900}, {W: 901, H: 4000}}
	widths := []uint32{1, 2, 99, 450, 900, 1600, 5000}

	for _, o := range originals {
		for _, w := range widths {
			got, err := Fit{W: w}.RequiredSize(o)
			require.NoError(t, err)

			if w >= o.W {
				assert.Equal(t, o, got, "original %v width %d", o, w)
				continue
			}
			assert.Equal(t, w, got.W)
			assert.Equal(t, uint32(uint64(w)*uint64(o.H)/uint64(o.W)), got.H)
		}
	}
}

func TestResizer_Idempotent(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "page.png", 300, 200)

	first, err := r.Resize("page.png", Fit{W: 150})
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Stats().Decodes)

	second, err := r.Resize("page.png", Fit{W: 150})
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second.Path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBytes, secondBytes)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Decodes, "second request must not decode")
	assert.Equal(t, int64(1), stats.ArtifactHits)
	assert.Equal(t, int64(1), stats.MemoryHits)
}

func TestResizer_SidecarReuse(t *testing.T) {
	root := t.TempDir()
	cache := t.TempDir()
	writeTestPNG(t, root, "2016/page.png", 120, 60)

	first, err := NewResizer(root, cache)
	require.NoError(t, err)
	_, err = first.Resize("2016/page.png", Fit{W: 60})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Stats().HeaderReads)

	sidecar := filepath.Join(cache, "2016", "page.png.size.json")
	assert.FileExists(t, sidecar)

	// A fresh process only has the sidecar.
	second, err := NewResizer(root, cache)
	require.NoError(t, err)
	res, err := second.Resize("2016/page.png", Fit{W: 60})
	require.NoError(t, err)

	assert.Equal(t, data.Size{W: 60, H: 30}, res.Size)
	stats := second.Stats()
	assert.Equal(t, int64(1), stats.SidecarHits)
	assert.Equal(t, int64(0), stats.HeaderReads)
	assert.Equal(t, int64(0), stats.Decodes)
}

func TestResizer_CorruptSidecar(t *testing.T) {
	root := t.TempDir()
	cache := t.TempDir()
	writeTestPNG(t, root, "page.png", 100, 50)

	sidecar := filepath.Join(cache, "page.png.size.json")
	require.NoError(t, os.WriteFile(sidecar, []byte("{not json"), 0644))

	r, err := NewResizer(root, cache)
	require.NoError(t, err)
	res, err := r.Resize("page.png", Fit{W: 50})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 50, H: 25}, res.Size)
	assert.Equal(t, int64(1), r.Stats().HeaderReads)

	content, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	assert.JSONEq(t, `{"w":100,"h":50}`, string(content))
}

func TestResizer_NotFound(t *testing.T) {
	r, root := newTestResizer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "corrupt.png"), []byte("\x89PNG\r\n\x1a\nnot really a png"), 0644))
	writeTestPNG(t, filepath.Dir(root), "outside.png", 10, 10)

	tests := []struct {
		name string
		src  string
	}{
		{"missing file", "missing.png"},
		{"not an image", "notes.txt"},
		{"corrupt image", "corrupt.png"},
		{"parent traversal", "../outside.png"},
		{"nested traversal", "a/../../outside.png"},
		{"absolute path", filepath.Join(root, "notes.txt")},
		{"empty name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resize(tt.src, Fit{W: 10})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	assert.Equal(t, 0, r.memory.Len(), "failed lookups must not be cached in memory")
	assert.Empty(t, cacheFiles(t, r.CacheDir()), "failed lookups must not write sidecars or artifacts")
}

func TestResizer_SidecarWriteFailure(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "page.png", 100, 50)

	// A regular file where the sidecar directory should be.
	blocked := filepath.Join(t.TempDir(), "sizes")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))
	r.sidecar = NewFileSizeCache(r.root, blocked)

	res, err := r.Resize("page.png", Fit{W: 50})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 50, H: 25}, res.Size)
	assert.Equal(t, 1, r.memory.Len())

	_, err = r.Resize("page.png", Fit{W: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Stats().HeaderReads)
	assert.Equal(t, int64(1), r.Stats().MemoryHits)
}

func TestResizer_ArtifactWriteFailure(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "2016/page.png", 100, 50)

	// A regular file where the artifact directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(r.CacheDir(), "2016"), []byte("x"), 0644))

	_, err := r.Resize("2016/page.png", Fit{W: 50})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"2016"}, cacheFiles(t, r.CacheDir()), "no partial or temp files")

	// The size is still known; only the artifact failed.
	assert.Equal(t, 1, r.memory.Len())
}

func TestResizer_SameStemSources(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(t.TempDir(), "cache")
	writeTestPNG(t, root, "page.png", 160, 90)

	square := image.NewPaletted(image.Rect(0, 0, 120, 120), color.Palette{color.Black, color.White})
	f, err := os.Create(filepath.Join(root, "page.gif"))
	require.NoError(t, err)
	require.NoError(t, gif.Encode(f, square, nil))
	require.NoError(t, f.Close())

	first, err := NewResizer(root, cache)
	require.NoError(t, err)
	wide, err := first.Resize("page.png", Fit{W: 80})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 80, H: 45}, wide.Size)

	// A fresh resizer only has the sidecars to go on.
	second, err := NewResizer(root, cache)
	require.NoError(t, err)
	res, err := second.Resize("page.gif", Fit{W: 80})
	require.NoError(t, err)

	assert.Equal(t, data.Size{W: 80, H: 80}, res.Size)
	assert.Equal(t, "page.gif.80x80.png", res.RelativeURL)
	assert.NotEqual(t, wide.Path, res.Path)
	assert.Equal(t, data.Size{W: 80, H: 80}, decodedSize(t, res.Path))
	assert.Equal(t, int64(1), second.Stats().HeaderReads)
}

func TestResizer_TargetTooLarge(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "page.png", 40, 30)

	tests := []struct {
		name string
		mode ResizeMode
	}{
		{"fit max uint32", Fit{W: 4294967295, H: 4294967295}},
		{"fit 50000 square", Fit{W: 50000, H: 50000}},
		{"fit side over limit", Fit{W: MaxSide + 1, H: 1}},
		{"fit area over limit", Fit{W: 8192, H: 8192}},
		{"fill max uint32", Fill{W: 4294967295, H: 4294967295}},
		{"fill area over limit", Fill{W: MaxSide, H: MaxSide}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resize("page.png", tt.mode)
			assert.ErrorIs(t, err, ErrInvalidMode)
		})
	}

	assert.Equal(t, int64(0), r.Stats().Decodes)

	// Widths alone never enlarge, so any value is accepted.
	res, err := r.Resize("page.png", Fit{W: 4294967295})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 40, H: 30}, res.Size)

	size, err := Fit{W: 4096, H: 4096}.RequiredSize(data.Size{W: 40, H: 30})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 4096, H: 4096}, size)
}

func TestResizer_Fill(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "cover.png", 400, 100)

	res, err := r.Resize("cover.png", Fill{W: 50, H: 50})
	require.NoError(t, err)

	assert.Equal(t, "cover.png.fill.50x50.png", res.RelativeURL)
	assert.Equal(t, data.Size{W: 50, H: 50}, decodedSize(t, res.Path))

	_, err = r.Resize("cover.png", Fill{W: 50})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestResizer_Degenerate(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "strip.png", 1000, 1)

	_, err := r.Resize("strip.png", Fit{W: 10})
	assert.ErrorIs(t, err, ErrDegenerateSize)
}

func TestResizer_ConcurrentSingleDecode(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "busy.png", 800, 600)

	// Warm the size cache so every goroutine reaches the artifact stage.
	_, err := r.originalSize(filepath.Join(root, "busy.png"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*ResizeResult, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Resize("busy.png", Fit{W: 200})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, data.Size{W: 200, H: 150}, results[i].Size)
	}
	assert.Equal(t, int64(1), r.Stats().Decodes)
	assert.Equal(t, int64(1), r.Stats().Encodes)

	entries, err := os.ReadDir(r.CacheDir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp files must not be left behind")
	}
}

func TestResizer_InvalidateSize(t *testing.T) {
	r, root := newTestResizer(t)
	writeTestPNG(t, root, "page.png", 100, 100)

	_, err := r.Resize("page.png", nil)
	require.NoError(t, err)
	require.NoError(t, r.InvalidateSize("page.png"))

	writeTestPNG(t, root, "page.png", 200, 100)
	res, err := r.Resize("page.png", Fit{W: 100})
	require.NoError(t, err)
	assert.Equal(t, data.Size{W: 100, H: 50}, res.Size)
	assert.Equal(t, int64(2), r.Stats().HeaderReads)

	assert.ErrorIs(t, r.InvalidateSize("../page.png"), ErrNotFound)
}

func TestCropToAspect(t *testing.T) {
	tests := []struct {
		name string
		src  image.Rectangle
		size data.Size
		want image.Rectangle
	}{
		{"wide to square", image.Rect(0, 0, 400, 100), data.Size{W: 1, H: 1}, image.Rect(150, 0, 250, 100)},
		{"tall to square", image.Rect(0, 0, 100, 400), data.Size{W: 1, H: 1}, image.Rect(0, 150, 100, 250)},
		{"same aspect", image.Rect(0, 0, 200, 100), data.Size{W: 20, H: 10}, image.Rect(0, 0, 200, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cropToAspect(tt.src, tt.size))
		})
	}
}
