package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/kerbaras/comics/pkg/template"
	"github.com/klauspost/compress/gzhttp"
)

const shutdownTimeout = 10 * time.Second

// Server is the comics web application.
type Server struct {
	ctrl     *services.ComicController
	views    *Views
	sessions *sessions
	router   chi.Router

	// Background work such as cache warming stops when ctx is cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the router for ctrl. Asset links and views are prepared once
// here and shared by every request.
func New(ctrl *services.ComicController) (*Server, error) {
	cfg := ctrl.Config()

	views, err := LoadViews(template.NewAssets(cfg.PublicDir, cfg.Prod))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctrl:     ctrl,
		views:    views,
		sessions: newSessions(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	cfg := s.ctrl.Config()
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	if cfg.Prod {
		r.Use(staticHeaders)
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	r.Get("/", s.handleHome)
	r.Get("/c/{slug}", s.handleComic)
	r.Get("/random", s.handleRandom)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/api/resize", s.handleResize)

	artifacts := s.static(s.ctrl.Resizer().CacheDir(), "/r/")
	if cfg.Prod {
		artifacts = immutableHeaders(artifacts)
	}
	r.Handle("/r/*", artifacts)
	r.Handle("/i/*", s.static(cfg.ImagesDir, "/i/"))
	r.Handle("/css/*", s.static(filepath.Join(cfg.PublicDir, "css"), "/css/"))
	r.Handle("/js/*", s.static(filepath.Join(cfg.PublicDir, "js"), "/js/"))
	r.Handle("/font/*", s.static(filepath.Join(cfg.PublicDir, "font"), "/font/"))

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.handleAdmin)
			r.Post("/logout", s.handleLogout)
			r.Post("/warm", s.handleWarm)
			r.Post("/invalidate", s.handleInvalidate)
		})
	})

	return r
}

func (s *Server) Controller() *services.ComicController {
	return s.ctrl
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logging.Logger(),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening on http://%s/", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close stops background work started by the server.
func (s *Server) Close() {
	s.cancel()
}

// static serves files below dir, answering directories, size sidecars and
// temp files with the not-found page.
func (s *Server) static(dir, prefix string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		base := filepath.Base(p)
		if strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".size.json") || strings.HasPrefix(base, ".") {
			s.handleNotFound(w, r)
			return
		}
		if _, err := os.Stat(dir); err != nil {
			s.handleNotFound(w, r)
			return
		}

		nw := &notFoundWriter{ResponseWriter: w}
		fs.ServeHTTP(nw, r)
		if nw.notFound {
			s.handleNotFound(w, r)
		}
	})
}
