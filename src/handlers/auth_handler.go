package handlers

import (
	"fmt"
	"log"
	"net/http"

	"girlmath-server/src/auth"
	"girlmath-server/src/models"
	"girlmath-server/src/util"
)

func RegisterForm(sessions *util.Sessions, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sessions.Identity(r); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		p.render(w, r, "register.html", "Register", nil)
	}
}

func Register(svc *auth.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := models.RegisterRequest{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}

		if _, err := svc.Register(r.Context(), req); err != nil {
			if models.IsExpected(err) {
				log.Printf("ERROR: Registration failed - Username: %s: %v", req.Username, err)
			}
			p.fail(w, r, err, "/register")
			return
		}

		p.redirect(w, r, "/login", util.FlashSuccess, "Registration successful! You can now log in.")
	}
}

func LoginForm(sessions *util.Sessions, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sessions.Identity(r); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		p.render(w, r, "login.html", "Log in", nil)
	}
}

func Login(svc *auth.Service, sessions *util.Sessions, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
		if err != nil {
			p.fail(w, r, err, "/login")
			return
		}

		if err := sessions.Issue(w, user); err != nil {
			log.Printf("ERROR: Failed to issue session for user %d: %v", user.ID, err)
			p.ErrorPage(w, r, http.StatusInternalServerError, "Could not sign you in. Please try again.")
			return
		}

		p.redirect(w, r, "/", util.FlashSuccess, fmt.Sprintf("Welcome back, %s 💕", user.Username))
	}
}

// Logout drops the session cookie. Sessions are stateless, so a copied token
// stays valid until it expires.
func Logout(sessions *util.Sessions, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w)
		p.redirect(w, r, "/login", util.FlashInfo, "You've been logged out.")
	}
}
