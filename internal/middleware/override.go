package middleware

import (
	"net/http" // HTTP handler wrapping
)

// MethodOverride lets HTML forms issue PUT and DELETE by appending a
// `_method` query parameter to a POST action. Only the query string is
// consulted so the request body is left untouched for the router.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.URL.Query().Get("_method") {
			case http.MethodPut:
				r.Method = http.MethodPut // Treat as an update
			case http.MethodDelete:
				r.Method = http.MethodDelete // Treat as a delete
			}
		}
		next.ServeHTTP(w, r) // Hand off to the router
	})
}
