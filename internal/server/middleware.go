package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuelsync/fuelsync/pkg/tenantctx"
)

const (
	HeaderTenant    = "X-Tenant-ID"
	HeaderUser      = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// RequestID propagates the inbound request ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, requestID)
		}
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// TenantContext resolves the tenant from the trusted gateway header and
// rejects API calls without one. The optional user header becomes the
// acting user for audit columns.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		tenantID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		if rawUser := strings.TrimSpace(c.GetHeader(HeaderUser)); rawUser != "" {
			if actorID, err := snowflake.ParseString(rawUser); err == nil {
				ctx = tenantctx.WithActorID(ctx, actorID)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.Writer.Header().Get(HeaderRequestID)),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
