package http

import (
	"net/http"

	"fintrack/internal/activity"
	"fintrack/internal/auth"
	"fintrack/internal/log"
)

// RegisteredMessage is shown on the login page after a successful sign-up.
const RegisteredMessage = "Registration successful. Please log in."

type loginView struct {
	Next   string
	Error  string
	Notice string
	Email  string
}

// loginPage renders the login/register screen outside the app layout.
func (s *Server) loginPage(w http.ResponseWriter, r *http.Request, status int, v loginView) {
	s.render(w, r, status, "login_page", page{Title: "Login", Active: "/login", Content: v})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if s.auth.Authenticated(sessionToken(r)) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	s.loginPage(w, r, http.StatusOK, loginView{Next: next})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}

	email := sanitizeInput(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	next := safeNext(r.PostForm.Get("next"))

	token, ok := s.auth.Login(r.Context(), email, password)
	if !ok {
		s.appMetrics.loginFailures.Add(1)
		s.loginPage(w, r, http.StatusUnauthorized, loginView{
			Next:  next,
			Error: auth.LoginFailedMessage,
			Email: email,
		})
		return
	}

	s.appMetrics.logins.Add(1)
	s.setSessionCookie(w, token)
	s.activity.Record(r.Context(), activity.New(activity.KindLogin, email, "signed in"))
	log.FromContext(r.Context()).InfoContext(r.Context(), "Session started",
		log.FieldUser, email,
		log.FieldOperation, log.OpLogin)

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}

	profile := auth.Profile{
		Email:    sanitizeInput(r.PostForm.Get("email")),
		Username: sanitizeInput(r.PostForm.Get("username")),
		FullName: sanitizeInput(r.PostForm.Get("full_name")),
		Password: r.PostForm.Get("password"),
	}
	next := safeNext(r.PostForm.Get("next"))

	if !s.auth.Register(r.Context(), profile) {
		s.loginPage(w, r, http.StatusUnprocessableEntity, loginView{
			Next:  next,
			Error: auth.RegistrationFailedMessage,
		})
		return
	}

	s.activity.Record(r.Context(), activity.New(activity.KindRegister, profile.Email, "account created"))
	s.loginPage(w, r, http.StatusOK, loginView{
		Next:   next,
		Notice: RegisteredMessage,
		Email:  profile.Email,
	})
}

// handleLogout ends the session and discards its workspace. It is safe to
// call without a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if id, ok := s.auth.Identity(token); ok {
		s.auth.Logout(token)
		s.workspaces.Drop(token)
		s.activity.Record(r.Context(), activity.New(activity.KindLogout, id.Email, "signed out"))
		log.FromContext(r.Context()).InfoContext(r.Context(), "Session ended",
			log.FieldUser, id.Email,
			log.FieldOperation, log.OpLogout)
	}
	s.clearSessionCookie(w)

	if isHTMX(r) {
		NewHTMXResponse().Redirect("/login").Write(w)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
