package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://vestia.ar",
	"https://www.vestia.ar",
}

// CORS returns middleware that applies the storefront's allowed origin
// policy. The configured site origin is appended when it is not already in
// the default list.
func CORS(siteURL string) func(http.Handler) http.Handler {
	origins := defaultCORSOrigins
	if siteURL != "" && !contains(origins, siteURL) {
		origins = append(append([]string{}, origins...), siteURL)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Cart-Session", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
