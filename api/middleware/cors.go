package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// The engine serves the storefront UI on the same machine, so only
// local dev origins are allowed.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// CORS returns middleware that applies the engine's allowed origin policy.
func CORS(extraOrigins ...string) func(http.Handler) http.Handler {
	origins := append([]string{}, defaultCORSOrigins...)
	origins = append(origins, extraOrigins...)
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
