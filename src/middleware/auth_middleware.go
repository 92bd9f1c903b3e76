package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"girlmath-server/src/models"
	"girlmath-server/src/util"
)

type contextKey string

const identityKey contextKey = "identity"

// ErrorPage renders an error response with the given status and message.
type ErrorPage func(w http.ResponseWriter, r *http.Request, status int, message string)

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity placed by RequireSession, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

// RequireSession lets the request through only with a valid session cookie.
// Everyone else is sent to the login page.
func RequireSession(sessions *util.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Identity(r)
			if err != nil {
				if !errors.Is(err, util.ErrNoSession) {
					log.Printf("ERROR: Rejected session cookie for %s: %v", r.URL.Path, err)
					sessions.Clear(w)
				}
				sessions.SetFlash(w, util.FlashInfo, "Please log in to access this page.")
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
