// Package middleware provides HTTP middleware for the taskboard server.
package middleware

import "net/http"

// Header values advertised on every cross-origin response.
const (
	AllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	AllowHeaders = "Content-Type, Authorization"
)

// CORS returns middleware that handles CORS headers. A "*" entry allows every
// origin and is advertised literally; otherwise a matching Origin is echoed.
// Preflight requests are answered with 200 and never reach next.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
			break
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); origin != "" {
				for _, o := range allowedOrigins {
					if o == origin {
						h.Set("Access-Control-Allow-Origin", origin)
						h.Add("Vary", "Origin")
						break
					}
				}
			}
			h.Set("Access-Control-Allow-Methods", AllowMethods)
			h.Set("Access-Control-Allow-Headers", AllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
