package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, X-Request-Id"
)

// CORS answers cross-origin requests for the listed origins. An empty
// allowlist opens the API to every origin, which matches the default
// single-host deployment where a local web UI talks to this server.
func CORS(allowlist []string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, origin := range allowlist {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if value := allowOriginValue(allowed, c.GetHeader("Origin")); value != "" {
			header := c.Writer.Header()
			header.Set("Access-Control-Allow-Origin", value)
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			if value != "*" {
				header.Set("Vary", "Origin")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowOriginValue(allowed map[string]struct{}, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	if _, ok := allowed[origin]; ok {
		return origin
	}
	return ""
}
