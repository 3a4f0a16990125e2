package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ingestRateLimit throttles reading submissions per tenant through the
// shared redis bucket. Disabled limiters pass everything through.
func (s *Server) ingestRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.ingestLimiter.Enabled() {
			c.Next()
			return
		}

		tenantID := strings.TrimSpace(c.GetHeader(HeaderTenant))
		res, err := s.ingestLimiter.AllowTenant(c.Request.Context(), tenantID)
		if err != nil {
			// A broken limiter must not take ingestion down with it.
			c.Next()
			return
		}
		if !res.Allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), tenantID, c.FullPath(), "bucket_empty")
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), tenantID, c.FullPath())
		c.Next()
	}
}
