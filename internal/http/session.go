package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/security"
	"fintrack/internal/workspace"
)

// SessionCookie carries the auth token.
const SessionCookie = "fintrack_session"

type contextKey int

const (
	workspaceKey contextKey = iota
	identityKey
)

func workspaceFrom(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(workspaceKey).(*workspace.Workspace)
	return ws
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey).(auth.Identity)
	return id
}

// sessionToken returns the token from the session cookie, or "".
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// guard only lets requests with a live session through. The session's
// workspace is created on first use and stored in the request context.
func (s *Server) guard(next http.HandlerFunc) http.Handler {
	return security.NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.auth.Identity(sessionToken(r))
		if !ok {
			s.redirectToLogin(w, r)
			return
		}

		ws := s.workspaces.Get(id.Token, id.Email)
		ctx := context.WithValue(r.Context(), workspaceKey, ws)
		ctx = context.WithValue(ctx, identityKey, id)
		ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldUser, id.Email))
		next(w, r.WithContext(ctx))
	}))
}

// redirectToLogin sends anonymous visitors to /login, remembering where they
// were going. htmx requests get an HX-Redirect so the whole page navigates.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if r.URL.Path != "/" && r.Method == http.MethodGet {
		target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
	}

	if isHTMX(r) {
		NewHTMXResponse().Redirect(target).Status(http.StatusUnauthorized).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
