package server

import (
	"net/http"
	"strings"
)

const (
	staticCacheControl = "public, max-age=2592000"
	staticVary         = "Accept-Encoding"
)

var staticContentTypes = []string{
	"text/css",
	"text/javascript",
	"application/javascript",
	"image/svg+xml",
	"font/",
	"application/font-woff",
	"application/x-font-ttf",
	"application/vnd.ms-fontobject",
}

func isStaticContentType(ct string) bool {
	ct = strings.ToLower(ct)
	for _, prefix := range staticContentTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

// staticHeaders lets browsers cache stylesheets, scripts, SVGs and fonts
// for 30 days. The decision is made on the response Content-Type, once the
// handler has set it.
func staticHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheHeaderWriter{ResponseWriter: w}, r)
	})
}

// immutableHeaders always sets the cache headers; resized artifacts never
// change once written.
func immutableHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheHeaderWriter{ResponseWriter: w, always: true}, r)
	})
}

type cacheHeaderWriter struct {
	http.ResponseWriter
	always      bool
	wroteHeader bool
}

func (w *cacheHeaderWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if status == http.StatusOK || status == http.StatusNotModified || status == http.StatusPartialContent {
			h := w.Header()
			if w.always || isStaticContentType(h.Get("Content-Type")) {
				h.Set("Cache-Control", staticCacheControl)
				h.Set("Vary", staticVary)
			}
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *cacheHeaderWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *cacheHeaderWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// notFoundWriter swallows a 404 written by a wrapped handler (such as
// http.FileServer) so the caller can render its own page instead.
type notFoundWriter struct {
	http.ResponseWriter
	notFound    bool
	wroteHeader bool
}

func (w *notFoundWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if status == http.StatusNotFound {
		w.notFound = true
		return
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *notFoundWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.notFound {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *notFoundWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
