package data

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"

	"github.com/goccy/go-json"
	"github.com/kerbaras/comics/pkg/logging"
)

var (
	ErrInvalidIndex  = errors.New("invalid comic index")
	ErrDuplicateSlug = errors.New("duplicate comic slug")
)

// Index is the ordered, slug-addressable list of comics. It is built once
// and never mutated, so it is safe for concurrent readers without locking.
type Index struct {
	path   string
	items  []Comic
	bySlug map[string]int

	randIntN func(n int) int
}

type comicRecord struct {
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
	File  *string `json:"file"`
}

// LoadIndex reads the index file at path. A missing file yields an empty
// index; any other read or decode problem is returned as an error.
func LoadIndex(path string) (*Index, error) {
	idx := NewIndex(nil)
	idx.path = path

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn("index %s not found, starting with no comics", path)
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}

	var records []comicRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidIndex, path, err)
	}

	for i, rec := range records {
		if rec.Title == nil || rec.Slug == nil || rec.File == nil {
			return nil, fmt.Errorf("%w: %s: record %d needs title, slug and file", ErrInvalidIndex, path, i)
		}
		if *rec.Slug == "" || *rec.File == "" {
			return nil, fmt.Errorf("%w: %s: record %d has an empty slug or file", ErrInvalidIndex, path, i)
		}
		if err := idx.push(Comic{Title: *rec.Title, Slug: *rec.Slug, File: *rec.File}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	logging.Info("loaded %d comics from %s", len(idx.items), path)
	return idx, nil
}

// NewIndex builds an index from comics in the given order. Duplicate slugs
// are skipped; use LoadIndex to have them rejected.
func NewIndex(comics []Comic) *Index {
	idx := &Index{
		bySlug:   make(map[string]int, len(comics)),
		randIntN: rand.Intn,
	}
	for _, c := range comics {
		_ = idx.push(c)
	}
	return idx
}

func (idx *Index) push(c Comic) error {
	if _, ok := idx.bySlug[c.Slug]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSlug, c.Slug)
	}

	c.prev, c.next = -1, -1
	if n := len(idx.items); n > 0 {
		c.prev = n - 1
		idx.items[n-1].next = n
	}
	idx.items = append(idx.items, c)
	idx.bySlug[c.Slug] = len(idx.items) - 1
	return nil
}

// Find resolves slug to its entry and the slugs of its neighbours.
func (idx *Index) Find(slug string) (FoundComic, bool) {
	i, ok := idx.bySlug[slug]
	if !ok {
		return FoundComic{}, false
	}

	item := idx.items[i]
	found := FoundComic{Title: item.Title, Slug: item.Slug, File: item.File}
	if item.prev >= 0 {
		found.PrevSlug = idx.items[item.prev].Slug
	}
	if item.next >= 0 {
		found.NextSlug = idx.items[item.next].Slug
	}
	return found, true
}

func (idx *Index) FirstSlug() (string, bool) {
	if len(idx.items) == 0 {
		return "", false
	}
	return idx.items[0].Slug, true
}

func (idx *Index) LastSlug() (string, bool) {
	if len(idx.items) == 0 {
		return "", false
	}
	return idx.items[len(idx.items)-1].Slug, true
}

// RandomSlug picks uniformly among all entries.
func (idx *Index) RandomSlug() (string, bool) {
	if len(idx.items) == 0 {
		return "", false
	}
	return idx.items[idx.randIntN(len(idx.items))].Slug, true
}

func (idx *Index) Len() int {
	return len(idx.items)
}

// Entries returns a copy of the comics in index order.
func (idx *Index) Entries() []Comic {
	out := make([]Comic, len(idx.items))
	copy(out, idx.items)
	return out
}

// Path is the file the index was loaded from, if any.
func (idx *Index) Path() string {
	return idx.path
}
