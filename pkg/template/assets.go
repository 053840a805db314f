package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kerbaras/comics/pkg/logging"
	"github.com/zeebo/xxh3"
)

var (
	prodCSS = []string{"/css/compiled/prod.css"}
	prodJS  = []string{"/js/compiled/prod.js"}

	devCSS = []string{
		"/css/compiled/dev.css",
		"/css/style.css",
		"/css/comics.css",
	}
	devJS = []string{
		"/js/compiled/require.js",
		"/js/config.js",
	}
)

// Assets holds the pre-built <link> and <script> tags shared by every page.
// Built once at startup and read-only afterwards.
type Assets struct {
	CSS     string
	JS      string
	Version string // empty outside production
}

// NewAssets builds the asset tags. In production every link carries a
// ?<version> cache-buster derived from the content of the referenced files
// under publicDir; files that cannot be read are left out of the hash.
func NewAssets(publicDir string, prod bool) *Assets {
	css, js := devCSS, devJS
	version := ""
	if prod {
		css, js = prodCSS, prodJS
		version = assetVersion(publicDir, append(append([]string{}, css...), js...))
	}

	a := &Assets{Version: version}

	var b strings.Builder
	for _, link := range css {
		fmt.Fprintf(&b, `<link rel="stylesheet" type="text/css" href="%s" />`, withVersion(link, version))
	}
	a.CSS = b.String()

	b.Reset()
	for _, link := range js {
		fmt.Fprintf(&b, `<script src="%s"></script>`, withVersion(link, version))
	}
	a.JS = b.String()

	return a
}

// Values returns the css and js tags as raw template values.
func (a *Assets) Values() Values {
	v := Values{}
	v.SetRaw("css", a.CSS)
	v.SetRaw("js", a.JS)
	return v
}

func withVersion(link, version string) string {
	if version == "" {
		return link
	}
	return link + "?" + version
}

func assetVersion(publicDir string, links []string) string {
	h := xxh3.New()
	for _, link := range links {
		content, err := os.ReadFile(filepath.Join(publicDir, filepath.FromSlash(strings.TrimPrefix(link, "/"))))
		if err != nil {
			logging.Warn("asset %s not hashed: %v", link, err)
			continue
		}
		h.Write(content)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
