package services

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/template"
)

// ErrNotFound is returned for slugs that are not in the index.
var ErrNotFound = errors.New("comic not found")

// DefaultPageWidth is the width comic images are fitted to on a page.
const DefaultPageWidth = 900

// disabledHref keeps a disabled link clickable-looking but inert.
const disabledHref = "javascript:;"

// ImageResizer produces the artifact for a source image below the images
// directory.
type ImageResizer interface {
	Resize(name string, mode integrations.ResizeMode) (*integrations.ResizeResult, error)
}

// Link is one of the navigation links of a page.
type Link struct {
	Name     string
	Slug     string // empty when the link has no target
	Href     string
	Disabled bool
}

// Page is everything needed to render one comic.
type Page struct {
	Title string
	Slug  string
	Image string // URL of the resized image, empty if it could not be produced
	Size  data.Size
	Links []Link // first, prev, random, next, last
}

// Link returns the navigation link called name.
func (p *Page) Link(name string) (Link, bool) {
	for _, l := range p.Links {
		if l.Name == name {
			return l, true
		}
	}
	return Link{}, false
}

// Values exposes the page to the comic view.
func (p *Page) Values() template.Values {
	v := template.Values{}
	v.Set("title", p.Title)
	v.Set("slug", p.Slug)
	v.Set("file", p.Image)
	v.Set("width", strconv.FormatUint(uint64(p.Size.W), 10))
	v.Set("height", strconv.FormatUint(uint64(p.Size.H), 10))
	for _, l := range p.Links {
		v.Set(l.Name+"_href", l.Href)
		if l.Disabled {
			v.Set(l.Name+"_disabled", "disabled")
		} else {
			v.Set(l.Name+"_disabled", "")
		}
	}
	return v
}

// PageBuilder assembles pages from the index and the resizer.
type PageBuilder struct {
	index   *data.Index
	resizer ImageResizer
	width   uint32
}

func NewPageBuilder(index *data.Index, resizer ImageResizer, width uint32) *PageBuilder {
	if width == 0 {
		width = DefaultPageWidth
	}
	return &PageBuilder{index: index, resizer: resizer, width: width}
}

func (b *PageBuilder) Width() uint32 {
	return b.width
}

// Build assembles the page for slug. A failing image does not fail the
// page; it is rendered without a picture.
func (b *PageBuilder) Build(slug string) (*Page, error) {
	found, ok := b.index.Find(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	page := &Page{Title: found.Title, Slug: found.Slug}

	res, err := b.resizer.Resize(found.File, integrations.Fit{W: b.width})
	if err != nil {
		logging.Warn("no image for %s: %v", found.Slug, err)
	} else {
		page.Image = ArtifactURL(res.RelativeURL)
		page.Size = res.Size
	}

	first, _ := b.index.FirstSlug()
	last, _ := b.index.LastSlug()
	random, _ := b.index.RandomSlug()

	page.Links = []Link{
		newLink("first", first, found.Slug),
		newLink("prev", found.PrevSlug, found.Slug),
		newLink("random", random, found.Slug),
		newLink("next", found.NextSlug, found.Slug),
		newLink("last", last, found.Slug),
	}
	return page, nil
}

func newLink(name, target, current string) Link {
	if target == "" || target == current {
		return Link{Name: name, Slug: target, Href: disabledHref, Disabled: true}
	}
	return Link{Name: name, Slug: target, Href: ComicURL(target)}
}

// ComicURL is the page URL of slug.
func ComicURL(slug string) string {
	return "/c/" + url.PathEscape(slug)
}

// ArtifactURL is the URL of a cached artifact given its cache-relative path.
func ArtifactURL(rel string) string {
	return (&url.URL{Path: "/r/" + rel}).EscapedPath()
}
