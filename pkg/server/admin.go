package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kerbaras/comics/pkg/logging"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/kerbaras/comics/pkg/template"
)

const (
	sessionCookie = "comics_admin"
	sessionTTL    = 12 * time.Hour
)

type session struct {
	username string
	expires  time.Time
}

// sessions maps opaque admin tokens to usernames. Tokens live in memory
// only; a restart logs everybody out.
type sessions struct {
	mu     sync.Mutex
	tokens map[string]session
	now    func() time.Time
}

func newSessions() *sessions {
	return &sessions{tokens: map[string]session{}, now: time.Now}
}

func (s *sessions) create(username string) (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	expires := s.now().Add(sessionTTL)
	s.tokens[token] = session{username: username, expires: expires}
	return token, expires
}

func (s *sessions) lookup(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	if s.now().After(sess.expires) {
		delete(s.tokens, token)
		return "", false
	}
	return sess.username, true
}

func (s *sessions) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

type userKey struct{}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		username, ok := s.sessions.lookup(cookie.Value)
		if !ok {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, username)))
	})
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, username, message string) {
	v := template.Values{}
	v.Set("username", username)
	v.Set("error", message)
	s.views.render(w, status, s.views.login, v)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.Users().Len() == 0 {
		s.renderLogin(w, http.StatusOK, "", "Admin login is disabled: no users are configured.")
		return
	}
	s.renderLogin(w, http.StatusOK, "", "")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, http.StatusBadRequest, "", "Invalid form.")
		return
	}

	username := r.PostFormValue("username")
	if !s.ctrl.Users().Authorize(username, r.PostFormValue("password")) {
		logging.Warn("failed admin login for %q", username)
		s.renderLogin(w, http.StatusUnauthorized, username, "Invalid username or password.")
		return
	}

	token, expires := s.sessions.create(username)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/admin",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.ctrl.Config().Prod,
		SameSite: http.SameSiteStrictMode,
	})
	logging.Info("admin %s logged in", username)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/admin", MaxAge: -1})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value(userKey{}).(string)
	stats := s.ctrl.Resizer().Stats()

	v := template.Values{}
	v.Set("user", username)
	v.Set("memory_hits", strconv.FormatInt(stats.MemoryHits, 10))
	v.Set("sidecar_hits", strconv.FormatInt(stats.SidecarHits, 10))
	v.Set("header_reads", strconv.FormatInt(stats.HeaderReads, 10))
	v.Set("decodes", strconv.FormatInt(stats.Decodes, 10))
	v.Set("encodes", strconv.FormatInt(stats.Encodes, 10))
	v.Set("copies", strconv.FormatInt(stats.Copies, 10))
	v.Set("artifact_hits", strconv.FormatInt(stats.ArtifactHits, 10))

	if s.ctrl.Warmer().Running() {
		v.SetRaw("warm_disabled", "disabled")
		v.Set("warm_status", "Warming in progress")
	} else {
		v.SetRaw("warm_disabled", "")
		v.Set("warm_status", "")
	}

	comics := s.ctrl.Index().Entries()
	v.Set("count", strconv.Itoa(len(comics)))

	var rows strings.Builder
	for i, c := range comics {
		fmt.Fprintf(&rows,
			`<tr><td>%d</td><td><a href="%s">%s</a></td><td>%s</td><td>%s</td>`+
				`<td><form method="post" action="/admin/invalidate?src=%s"><button type="submit">Forget size</button></form></td></tr>`,
			i+1,
			html.EscapeString(services.ComicURL(c.Slug)),
			html.EscapeString(c.Slug),
			html.EscapeString(c.Title),
			html.EscapeString(c.File),
			html.EscapeString(url.QueryEscape(c.File)),
		)
	}
	v.SetRaw("rows", rows.String())

	s.views.render(w, http.StatusOK, s.views.admin, v)
}

func (s *Server) handleWarm(w http.ResponseWriter, r *http.Request) {
	if s.ctrl.Warmer().Running() {
		http.Error(w, services.ErrWarmInProgress.Error(), http.StatusConflict)
		return
	}

	go func() {
		if _, err := s.ctrl.Warmer().Warm(s.ctx); err != nil && !errors.Is(err, services.ErrWarmInProgress) {
			logging.Error("cache warming failed: %v", err)
		}
	}()
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if err := s.ctrl.Resizer().InvalidateSize(src); err != nil {
		logging.Warn("failed to invalidate %q: %v", src, err)
		http.Error(w, "cannot invalidate "+src, http.StatusBadRequest)
		return
	}
	logging.Info("invalidated cached size of %s", src)
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}
