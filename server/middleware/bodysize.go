package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/diard/util"
)

// Audio uploads routinely run to tens of megabytes, so the fallback is
// generous compared to a typical JSON API.
const defaultMaxBodySize = 100 * 1024 * 1024 // 100MB

// BodySizeLimit returns middleware that restricts the request body to the given
// size string (e.g. "100MB", "512KB", "1GB").
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

// GinBodySizeLimit returns a Gin middleware for body size limiting.
// Prefer BodySizeLimit at the server level via ApplyMiddleware which covers
// all routes. Use this only when you need it on the Gin engine directly.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	return GinWrap(BodySizeLimit(maxSize))
}
