package storefront

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
)

// requestID adopts the caller's X-Request-ID or mints one, echoes it on the
// response, and binds it to the request context so store API calls carry it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(storeapi.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(storeapi.RequestIDHeader, id)
		c.Request = c.Request.WithContext(storeapi.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		id, _ := storeapi.RequestIDFromContext(c.Request.Context())
		logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "request served",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", id),
		)
	}
}
