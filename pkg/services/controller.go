package services

import (
	"fmt"

	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
)

// ComicController wires the index, users and image cache described by a
// Config. It is shared by the web server and every CLI command.
type ComicController struct {
	cfg     config.Config
	index   *data.Index
	users   *data.Users
	resizer *integrations.Resizer
	pages   *PageBuilder
	warmer  *Warmer
}

// NewComicController loads the index and users and prepares the cache
// directory. Any failure here is fatal for the caller.
func NewComicController(cfg config.Config) (*ComicController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	index, err := data.LoadIndex(cfg.IndexPath)
	if err != nil {
		return nil, err
	}

	users, err := data.LoadUsers(cfg.UsersPath)
	if err != nil {
		return nil, err
	}

	resizer, err := integrations.NewResizer(cfg.ImagesDir, cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	width := uint32(cfg.PageWidth)
	return &ComicController{
		cfg:     cfg,
		index:   index,
		users:   users,
		resizer: resizer,
		pages:   NewPageBuilder(index, resizer, width),
		warmer:  NewWarmer(index, resizer, width, cfg.WarmWorkers),
	}, nil
}

func (c *ComicController) Config() config.Config { return c.cfg }
func (c *ComicController) Index() *data.Index { return c.index }
func (c *ComicController) Users() *data.Users { return c.users }
func (c *ComicController) Resizer() *integrations.Resizer { return c.resizer }
func (c *ComicController) Pages() *PageBuilder { return c.pages }
func (c *ComicController) Warmer() *Warmer { return c.warmer }

// ExportEPub writes the whole archive, in index order, to outputPath. Pages
// use the page width, or the screen width of device when one is named.
func (c *ComicController) ExportEPub(title, outputPath, device string) (string, error) {
	width := c.pages.Width()
	if device != "" {
		profile, err := integrations.LookupDevice(device)
		if err != nil {
			return "", err
		}
		width = profile.Width
	}
	builder := integrations.NewEPubBuilder(c.resizer, width)
	return builder.CreateEPub(title, c.index.Entries(), outputPath)
}
