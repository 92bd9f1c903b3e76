package middleware

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/google/uuid"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFFieldName  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	csrfKey contextKey = "csrf"
)

// CSRFToken returns the token forms must echo back in the csrf_token field.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

// CSRF implements the double-submit cookie pattern: every unsafe request must
// carry a form field or header equal to the csrf_token cookie.
func CSRF(secure bool, forbidden ErrorPage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieToken string
			if cookie, err := r.Cookie(CSRFCookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					cookieToken = cookie.Value
				}
			}

			if !isSafeMethod(r.Method) {
				submitted := r.Header.Get(CSRFHeaderName)
				if submitted == "" {
					submitted = r.PostFormValue(CSRFFieldName)
				}
				if cookieToken == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) != 1 {
					log.Printf("ERROR: CSRF check failed for %s %s", r.Method, r.URL.Path)
					forbidden(w, r, http.StatusForbidden, "Your form has expired. Please go back, reload the page and try again.")
					return
				}
			}

			if cookieToken == "" {
				cookieToken = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    cookieToken,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey, cookieToken)))
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
