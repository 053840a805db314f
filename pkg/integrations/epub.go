package integrations

import (
	"fmt"
	"html"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/logging"
)

// EPubBuilder exports the comic archive as a single EPUB, one section per
// comic, using the same resized artifacts the web pages serve.
type EPubBuilder struct {
	resizer *Resizer
	width   uint32
	author  string
}

func NewEPubBuilder(resizer *Resizer, width uint32) *EPubBuilder {
	return &EPubBuilder{resizer: resizer, width: width, author: "comics"}
}

func (b *EPubBuilder) SetAuthor(author string) {
	b.author = author
}

// CreateEPub writes the comics, in the given order, to outputPath. Comics
// whose image cannot be resized are skipped with a warning. When outputPath
// is empty the file is named after the title in the current directory.
func (b *EPubBuilder) CreateEPub(title string, comics []data.Comic, outputPath string) (string, error) {
	if len(comics) == 0 {
		return "", fmt.Errorf("no comics to export")
	}

	if outputPath == "" {
		outputPath = sanitizeFilename(title) + ".epub"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor(b.author)
	e.SetDescription(fmt.Sprintf("%d comics", len(comics)))
	e.SetLang("en")

	added := 0
	for i, comic := range comics {
		if err := b.addComic(e, i, comic); err != nil {
			logging.Warn("skipping %s in EPub: %v", comic.Slug, err)
			continue
		}
		added++
	}
	if added == 0 {
		return "", fmt.Errorf("none of the %d comics could be exported", len(comics))
	}

	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	logging.Info("exported %d of %d comics to %s", added, len(comics), outputPath)
	return outputPath, nil
}

func (b *EPubBuilder) addComic(e *epub.Epub, i int, comic data.Comic) error {
	res, err := b.resizer.Resize(comic.File, Fit{W: b.width})
	if err != nil {
		return err
	}

	// Artifacts from different directories may share a base name.
	internalName := fmt.Sprintf("comic-%05d%s", i+1, path.Ext(res.RelativeURL))
	internalPath, err := e.AddImage(res.Path, internalName)
	if err != nil {
		return fmt.Errorf("failed to add image %s: %w", res.Path, err)
	}

	title := html.EscapeString(comic.Title)
	var body strings.Builder
	fmt.Fprintf(&body, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&body,
		`<div class="comic"><img src="%s" alt="%s" width="%d" height="%d" style="width:100%%;height:auto;"/></div>`+"\n",
		internalPath, title, res.Size.W, res.Size.H,
	)

	if _, err := e.AddSection(body.String(), comic.Title, "", ""); err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	return nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "comics"
	}
	return result
}
