package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Headers sets headers on every response before next runs, so they are
// present regardless of which handler writes the response.
func Headers(headers map[string]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}

			next.ServeHTTP(w, r)
		})
	}
}
