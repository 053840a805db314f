package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/kerbaras/comics/pkg/template"
)

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.views.render(w, http.StatusNotFound, s.views.notFound, template.Values{})
}

// handleHome sends the reader to the newest comic.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.ctrl.Index().LastSlug()
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	http.Redirect(w, r, services.ComicURL(slug), http.StatusFound)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.ctrl.Index().RandomSlug()
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	http.Redirect(w, r, services.ComicURL(slug), http.StatusFound)
}

func (s *Server) handleComic(w http.ResponseWriter, r *http.Request) {
	page, err := s.ctrl.Pages().Build(chi.URLParam(r, "slug"))
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			logging.Error("failed to build page: %v", err)
		}
		s.handleNotFound(w, r)
		return
	}
	s.views.render(w, http.StatusOK, s.views.comic, page.Values())
}

type resizeResponse struct {
	URL string `json:"url"`
	W   uint32 `json:"w"`
	H   uint32 `json:"h"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleResize resolves an image on demand:
// GET /api/resize?src=2016/a.png&w=300&h=&mode=fit|fill
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	width, err := parseSide(q.Get("w"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid w: " + err.Error()})
		return
	}
	height, err := parseSide(q.Get("h"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid h: " + err.Error()})
		return
	}

	var mode integrations.ResizeMode
	switch q.Get("mode") {
	case "", "fit":
		mode = integrations.Fit{W: width, H: height}
	case "fill":
		mode = integrations.Fill{W: width, H: height}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "mode must be fit or fill"})
		return
	}

	res, err := s.ctrl.Resizer().Resize(q.Get("src"), mode)
	switch {
	case errors.Is(err, integrations.ErrInvalidMode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "image not found"})
		return
	}

	writeJSON(w, http.StatusOK, resizeResponse{
		URL: services.ArtifactURL(res.RelativeURL),
		W:   res.Size.W,
		H:   res.Size.H,
	})
}

func parseSide(v string) (uint32, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error("failed to encode response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
