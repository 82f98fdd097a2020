package api

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"echochat/internal/auth"
	"echochat/pkg/api"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	msgInvalidLogin     = "Invalid username or password"
	msgUsernameExists   = "Username already exists"
	msgMissingFields    = "Username and password are required"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
	msgRegistrationDone = "Registration successful, please log in"
)

type pageData struct {
	Title    string
	Flash    string
	Username string
}

// PageService serves the browser facing login, registration and chat pages.
type PageService struct {
	credentials *auth.Credentials
	sessions    *auth.SessionManager
	flash       *Flash
	pages       map[string]*template.Template
}

func NewPageService(credentials *auth.Credentials, sessions *auth.SessionManager, flash *Flash) (*PageService, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login", "register", "chat"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}

	return &PageService{credentials: credentials, sessions: sessions, flash: flash, pages: pages}, nil
}

func (s *PageService) AddRoutes(r chi.Router) {
	r.With(s.sessions.RequireLogin).Get("/", s.Index)
	r.With(s.sessions.RequireLogin).Get("/logout", s.Logout)

	r.Get("/login", s.LoginPage)
	r.Post("/login", s.Login)
	r.Get("/register", s.RegisterPage)
	r.Post("/register", s.Register)
}

func (s *PageService) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("error rendering page", "page", name, "error", err)
	}
}

func (s *PageService) Index(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	username, err := s.credentials.Username(r.Context(), identity.UserId)
	if err != nil {
		slog.Error("error loading user for chat page", "user_id", identity.UserId, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "chat", pageData{Title: "Chat", Username: username, Flash: s.flash.Pop(w, r)})
}

func (s *PageService) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.CurrentUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, "login", pageData{Title: "Log in", Flash: s.flash.Pop(w, r)})
}

func (s *PageService) Login(w http.ResponseWriter, r *http.Request) {
	form, err := ParseForm[api.CredentialsForm](r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userId, err := s.credentials.Verify(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailure) {
			slog.Info("failed login attempt", "username", form.Username)
			s.render(w, "login", pageData{Title: "Log in", Flash: msgInvalidLogin})
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if _, err := s.sessions.StartSession(w, r, userId); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *PageService) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register", pageData{Title: "Register", Flash: s.flash.Pop(w, r)})
}

func (s *PageService) Register(w http.ResponseWriter, r *http.Request) {
	form, err := ParseForm[api.CredentialsForm](r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.credentials.Register(r.Context(), form.Username, form.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			s.flash.Set(w, msgUsernameExists)
		case errors.Is(err, auth.ErrMissingCredential):
			s.flash.Set(w, msgMissingFields)
		case errors.Is(err, auth.ErrPasswordTooLong):
			s.flash.Set(w, msgPasswordTooLong)
		default:
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	s.flash.Set(w, msgRegistrationDone)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *PageService) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.EndSession(w, r); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
