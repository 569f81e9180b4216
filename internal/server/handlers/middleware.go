package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/Tredoux555/whale-class-sub004/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// DeviceIDKey is the gin context key holding the authenticated device id.
const DeviceIDKey = "device_id"

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header
// and stores the token's device id under DeviceIDKey.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		deviceID, err := auth.GetDeviceIDFromToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}

// RequestLogger logs one line per request through log.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		if deviceID := c.GetString(DeviceIDKey); deviceID != "" {
			args = append(args, "device", deviceID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error(c.Request.Context(), "request", args...)
		case status >= http.StatusBadRequest:
			log.Warn(c.Request.Context(), "request", args...)
		default:
			log.Debug(c.Request.Context(), "request", args...)
		}
	}
}
