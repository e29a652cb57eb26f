package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

const tooManyAttempts = "Preveč poskusov. Poskusite znova čez nekaj trenutkov."

type loginPage struct {
	PageData
	Username string
}

type registerForm struct {
	Name     string
	Username string
	Phone    string
}

type registerPage struct {
	PageData
	Form registerForm
}

type verifyPage struct {
	PageData
	Username string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &loginPage{PageData: PageData{Title: "Prijava"}})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := &loginPage{PageData: PageData{Title: "Prijava"}, Username: username}

	if !s.allow(r) {
		data.Error = tooManyAttempts
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "login.html", data)
		return
	}

	if username == "" || password == "" {
		data.Error = "Vnesite uporabniško ime in geslo."
		s.Templates.Render(w, "login.html", data)
		return
	}

	token, _, err := s.Accounts.Login(r.Context(), username, password)
	switch {
	case errors.Is(err, auth.ErrNotVerified):
		http.Redirect(w, r, "/verify/"+url.PathEscape(username), http.StatusSeeOther)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		data.Error = "Napačno uporabniško ime ali geslo."
		s.Templates.Render(w, "login.html", data)
		return
	case err != nil:
		slog.Error("failed to log in", "error", err)
		data.Error = "Napaka pri prijavi."
		s.Templates.Render(w, "login.html", data)
		return
	}

	setAuthCookie(w, token, s.TokenTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &registerPage{PageData: PageData{Title: "Registracija"}})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	reg := auth.Registration{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	}
	data := &registerPage{
		PageData: PageData{Title: "Registracija"},
		Form:     registerForm{Name: reg.Name, Username: reg.Username, Phone: reg.Phone},
	}

	if !s.allow(r) {
		data.Error = tooManyAttempts
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "register.html", data)
		return
	}

	if reg.Name == "" || reg.Username == "" || reg.Password == "" {
		data.Error = "Izpolnite ime, uporabniško ime in geslo."
		s.Templates.Render(w, "register.html", data)
		return
	}

	_, err := s.Accounts.Register(r.Context(), reg)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		data.Error = "Uporabniško ime je že zasedeno."
		s.Templates.Render(w, "register.html", data)
		return
	case errors.Is(err, model.ErrPasswordTooShort):
		data.Error = "Geslo mora imeti vsaj 8 znakov."
		s.Templates.Render(w, "register.html", data)
		return
	case err != nil:
		slog.Error("failed to register user", "error", err)
		data.Error = "Napaka pri registraciji."
		s.Templates.Render(w, "register.html", data)
		return
	}

	http.Redirect(w, r, "/verify/"+url.PathEscape(reg.Username), http.StatusSeeOther)
}

// VerifyPage handles GET /verify/{username}.
func (s *Server) VerifyPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "verify.html", &verifyPage{
		PageData: PageData{Title: "Potrditev računa"},
		Username: r.PathValue("username"),
	})
}

// VerifySubmit handles POST /verify/{username}. A correct code signs the user in.
func (s *Server) VerifySubmit(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	data := &verifyPage{PageData: PageData{Title: "Potrditev računa"}, Username: username}

	if !s.allow(r) {
		data.Error = tooManyAttempts
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "verify.html", data)
		return
	}

	token, _, err := s.Accounts.Verify(r.Context(), username, strings.TrimSpace(r.FormValue("code")))
	if errors.Is(err, auth.ErrInvalidCode) {
		data.Error = "Napačna ali potekla koda."
		s.Templates.Render(w, "verify.html", data)
		return
	}
	if err != nil {
		slog.Error("failed to verify user", "error", err)
		data.Error = "Napaka pri potrjevanju."
		s.Templates.Render(w, "verify.html", data)
		return
	}

	setAuthCookie(w, token, s.TokenTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// VerifyResend handles POST /verify/{username}/resend.
func (s *Server) VerifyResend(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	data := &verifyPage{PageData: PageData{Title: "Potrditev računa"}, Username: username}

	if !s.allow(r) {
		data.Error = tooManyAttempts
		s.Templates.RenderStatus(w, http.StatusTooManyRequests, "verify.html", data)
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.Accounts.DB, username)
	if err != nil {
		slog.Error("failed to get user", "error", err)
	}
	// Unknown or already verified users get the same answer.
	if user != nil && !user.Verified() {
		if err := s.Accounts.SendCode(r.Context(), user); err != nil {
			slog.Error("failed to send verification code", "error", err)
		}
	}

	data.Success = "Nova koda je bila poslana."
	s.Templates.Render(w, "verify.html", data)
}

// Logout handles GET and POST /logout. The session token is revoked.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		if claims, err := s.Accounts.Authenticate(r.Context(), cookie.Value); err == nil {
			if err := s.Accounts.Logout(r.Context(), claims); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
