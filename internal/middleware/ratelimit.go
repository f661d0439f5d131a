package middleware

import (
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
)

// RateLimit limits requests per client IP. A non-positive rate disables limiting.
// The client IP is the connection's remote address unless ipHeader names a
// forwarding header set by a trusted proxy (X-Forwarded-For or X-Real-IP).
func RateLimit(perSecond float64, ipHeader string) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	lookups := []string{"RemoteAddr"}
	if ipHeader != "" {
		lookups = []string{ipHeader, "RemoteAddr"}
	}

	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups(lookups)

	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			c.AbortWithStatusJSON(httpErr.StatusCode, gin.H{"error": "Too many requests, please slow down"})
			return
		}
		c.Next()
	}
}
