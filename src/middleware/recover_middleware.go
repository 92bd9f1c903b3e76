package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recover turns a panic into the 500 page.
func Recover(page ErrorPage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Printf("ERROR: panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					page(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
