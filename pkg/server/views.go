package server

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/template"
)

//go:embed views/*.html
var viewFS embed.FS

// Views holds the compiled page templates and the shared asset tags.
type Views struct {
	assets   *template.Assets
	comic    *template.Template
	notFound *template.Template
	login    *template.Template
	admin    *template.Template
}

// LoadViews compiles every embedded view. A broken view is a startup error.
func LoadViews(assets *template.Assets) (*Views, error) {
	v := &Views{assets: assets}
	targets := map[string]**template.Template{
		"comic.html":     &v.comic,
		"not_found.html": &v.notFound,
		"login.html":     &v.login,
		"admin.html":     &v.admin,
	}
	for name, dst := range targets {
		src, err := viewFS.ReadFile("views/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read view %s: %w", name, err)
		}
		tpl, err := template.Parse(name, string(src))
		if err != nil {
			return nil, err
		}
		*dst = tpl
	}
	return v, nil
}

// render writes tpl with values plus the asset tags. Rendering failures are
// logged and answered with a bare 500.
func (v *Views) render(w http.ResponseWriter, status int, tpl *template.Template, values template.Values) {
	all := v.assets.Values()
	all.Merge(values)

	body, err := tpl.Render(all)
	if err != nil {
		logging.Error("failed to render %s: %v", tpl.Name(), err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
