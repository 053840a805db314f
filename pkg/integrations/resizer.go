package integrations

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/logging"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned whenever a resized image cannot be produced: the
// source is missing, outside the images root, not decodable, or the
// artifact could not be written.
var ErrNotFound = errors.New("image not found")

// ResizeResult points at a ready-to-serve artifact in the cache directory.
type ResizeResult struct {
	Path        string
	RelativeURL string // slash-separated, relative to the cache directory
	Size        data.Size
}

// ResizerStats counts cache activity since the Resizer was created.
type ResizerStats struct {
	MemoryHits   int64
	SidecarHits  int64
	HeaderReads  int64
	Decodes      int64
	Encodes      int64
	Copies       int64
	ArtifactHits int64
}

// Resizer produces resized copies of images below root and caches them,
// together with the original sizes, in cacheDir. Artifacts are never
// invalidated or evicted.
type Resizer struct {
	root     string
	cacheDir string

	memory  *MemorySizeCache
	sidecar *FileSizeCache
	group   singleflight.Group

	memoryHits   atomic.Int64
	sidecarHits  atomic.Int64
	headerReads  atomic.Int64
	decodes      atomic.Int64
	encodes      atomic.Int64
	copies       atomic.Int64
	artifactHits atomic.Int64
}

// NewResizer creates the cache directory if needed.
func NewResizer(root, cacheDir string) (*Resizer, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve images directory: %w", err)
	}
	absCache, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	if err := os.MkdirAll(absCache, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Resizer{
		root:     absRoot,
		cacheDir: absCache,
		memory:   NewMemorySizeCache(),
		sidecar:  NewFileSizeCache(absRoot, absCache),
	}, nil
}

func (r *Resizer) CacheDir() string {
	return r.cacheDir
}

// Resize returns the artifact for name (relative to the images root)
// resized according to mode. A nil mode keeps the original size.
func (r *Resizer) Resize(name string, mode ResizeMode) (*ResizeResult, error) {
	if mode == nil {
		mode = Fit{}
	}

	src, rel, err := r.sourcePath(name)
	if err != nil {
		return nil, err
	}

	original, err := r.originalSize(src)
	if err != nil {
		logging.Error("failed to read size of %s: %v", src, err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	required, err := mode.RequiredSize(original)
	if err != nil {
		logging.Error("invalid image size %s: %v", src, err)
		return nil, err
	}
	if required.IsZero() {
		return nil, fmt.Errorf("%w: %s resizes to %dx%d", ErrDegenerateSize, name, required.W, required.H)
	}

	needsResize := required != original || mode.cacheTag() != ""
	cachedName := artifactName(rel, required, mode, needsResize)
	cachedPath := filepath.Join(r.cacheDir, filepath.FromSlash(cachedName))
	result := &ResizeResult{Path: cachedPath, RelativeURL: cachedName, Size: required}

	if fileExists(cachedPath) {
		r.artifactHits.Add(1)
		return result, nil
	}

	_, err, _ = r.group.Do(cachedPath, func() (any, error) {
		if fileExists(cachedPath) {
			r.artifactHits.Add(1)
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(cachedPath), 0755); err != nil {
			return nil, err
		}
		if needsResize {
			return nil, r.render(src, cachedPath, required, mode)
		}
		r.copies.Add(1)
		return nil, writeFileAtomic(cachedPath, func(f *os.File) error {
			return copyFile(f, src)
		})
	})
	if err != nil {
		logging.Error("failed to save resized image %s -> %s: %v", src, cachedPath, err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return result, nil
}

// InvalidateSize drops the cached original size of name from both tiers.
// Existing artifacts are kept.
func (r *Resizer) InvalidateSize(name string) error {
	src, _, err := r.sourcePath(name)
	if err != nil {
		return err
	}
	r.memory.Invalidate(src)
	return r.sidecar.Invalidate(src)
}

func (r *Resizer) Stats() ResizerStats {
	return ResizerStats{
		MemoryHits:   r.memoryHits.Load(),
		SidecarHits:  r.sidecarHits.Load(),
		HeaderReads:  r.headerReads.Load(),
		Decodes:      r.decodes.Load(),
		Encodes:      r.encodes.Load(),
		Copies:       r.copies.Load(),
		ArtifactHits: r.artifactHits.Load(),
	}
}

// sourcePath resolves name below the images root. Names that are absolute
// or climb out of the root are reported as not found.
func (r *Resizer) sourcePath(name string) (string, string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if name == "" || !filepath.IsLocal(rel) {
		return "", "", fmt.Errorf("%w: %q is outside the images directory", ErrNotFound, name)
	}
	return filepath.Join(r.root, rel), filepath.ToSlash(rel), nil
}

// originalSize looks in memory, then the sidecar, then the image header.
// Each lower-tier hit fills the tiers above it.
func (r *Resizer) originalSize(src string) (data.Size, error) {
	if size, ok := r.memory.Get(src); ok {
		r.memoryHits.Add(1)
		return size, nil
	}

	if size, ok := r.sidecar.Get(src); ok {
		r.sidecarHits.Add(1)
		r.memory.Set(src, size)
		return size, nil
	}

	r.headerReads.Add(1)
	size, err := readImageSize(src)
	if err != nil {
		return data.Size{}, err
	}

	r.memory.Set(src, size)
	if err := r.sidecar.Set(src, size); err != nil {
		logging.Warn("failed to cache size of %s: %v", src, err)
	}
	return size, nil
}

func (r *Resizer) render(src, dest string, size data.Size, mode ResizeMode) error {
	r.decodes.Add(1)
	img, err := decodeImage(src)
	if err != nil {
		return err
	}

	resized := resample(img, size, mode)

	r.encodes.Add(1)
	return writeFileAtomic(dest, func(f *os.File) error {
		return encodePNG(f, resized)
	})
}

// artifactName is <name>.<W>x<H>.png for resized images (with a "fill."
// tag for Fill) and the source name unchanged otherwise. name keeps the
// source extension so sources sharing a stem get distinct artifacts.
func artifactName(rel string, size data.Size, mode ResizeMode, resized bool) string {
	if !resized {
		return rel
	}
	return fmt.Sprintf("%s.%s%dx%d.png", rel, mode.cacheTag(), size.W, size.H)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
