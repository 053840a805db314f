package integrations

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/logging"
)

// SizeCache stores image dimensions keyed by absolute source path.
type SizeCache interface {
	Get(path string) (data.Size, bool)
	Set(path string, size data.Size) error
	Invalidate(path string) error
}

// MemorySizeCache keeps sizes for the lifetime of the process.
type MemorySizeCache struct {
	mu    sync.RWMutex
	sizes map[string]data.Size
}

func NewMemorySizeCache() *MemorySizeCache {
	return &MemorySizeCache{sizes: make(map[string]data.Size)}
}

func (c *MemorySizeCache) Get(path string) (data.Size, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	size, ok := c.sizes[path]
	return size, ok
}

func (c *MemorySizeCache) Set(path string, size data.Size) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[path] = size
	return nil
}

func (c *MemorySizeCache) Invalidate(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sizes, path)
	return nil
}

func (c *MemorySizeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sizes)
}

// FileSizeCache keeps one <name>.size.json sidecar per source image under
// dir, mirroring the source's location below root. The source extension is
// part of the name, so page.png and page.gif never share a sidecar.
type FileSizeCache struct {
	root string
	dir  string
}

func NewFileSizeCache(root, dir string) *FileSizeCache {
	return &FileSizeCache{root: root, dir: dir}
}

// SidecarPath returns where the size of the source image at path is stored.
func (c *FileSizeCache) SidecarPath(path string) string {
	rel, err := filepath.Rel(c.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		rel = filepath.Base(path)
	}
	return filepath.Join(c.dir, rel+".size.json")
}

// Get treats an unreadable or malformed sidecar as a miss.
func (c *FileSizeCache) Get(path string) (data.Size, bool) {
	sidecar := c.SidecarPath(path)

	content, err := os.ReadFile(sidecar)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("failed to read cached size %s: %v", sidecar, err)
		}
		return data.Size{}, false
	}

	var size data.Size
	if err := json.Unmarshal(content, &size); err != nil {
		logging.Warn("failed to decode cached size %s: %v", sidecar, err)
		return data.Size{}, false
	}
	if size.IsZero() {
		logging.Warn("ignoring cached size %s: %dx%d", sidecar, size.W, size.H)
		return data.Size{}, false
	}
	return size, true
}

func (c *FileSizeCache) Set(path string, size data.Size) error {
	sidecar := c.SidecarPath(path)

	content, err := json.Marshal(size)
	if err != nil {
		return fmt.Errorf("failed to encode size: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sidecar), 0755); err != nil {
		return fmt.Errorf("failed to create size cache directory: %w", err)
	}
	return writeFileAtomic(sidecar, func(f *os.File) error {
		_, err := f.Write(content)
		return err
	})
}

func (c *FileSizeCache) Invalidate(path string) error {
	err := os.Remove(c.SidecarPath(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// writeFileAtomic writes to a temp file next to dest and renames it into
// place, so readers never observe a partial file.
func writeFileAtomic(dest string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish %s: %w", dest, err)
	}
	return nil
}
