package middleware

import (
	"net/http"
	"strings"
)

// ReadOnlyMiddleware refuses every state change except signing in and out
// when readOnly is set. The delete routes are GETs, so they are matched by
// path as well as method.
func ReadOnlyMiddleware(readOnly bool, forbidden ErrorPage) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/login":    true,
		"/register": true,
	}
	mutatingGets := []string{"/delete/", "/delete_goal/"}

	return func(next http.Handler) http.Handler {
		if !readOnly {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked := false
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				for _, prefix := range mutatingGets {
					if strings.HasPrefix(r.URL.Path, prefix) {
						blocked = true
					}
				}
			case http.MethodPost:
				blocked = !allowedPosts[r.URL.Path]
			default:
				blocked = true
			}

			if blocked {
				forbidden(w, r, http.StatusForbidden, "Demo mode: changes are disabled.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
