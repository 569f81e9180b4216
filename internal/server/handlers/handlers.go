// Package handlers implements the receiver's HTTP endpoints on gin: media
// upload and delete for authenticated devices, plus health and metrics.
package handlers

import (
	"net/http"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/Tredoux555/whale-class-sub004/internal/server/metrics"
	"github.com/Tredoux555/whale-class-sub004/internal/server/repositories/media"
	"github.com/Tredoux555/whale-class-sub004/internal/server/storage"
	"github.com/gin-gonic/gin"
)

// MetricsPath serves the Prometheus registry.
const MetricsPath = "/metrics"

// Handler serves the media endpoints.
type Handler struct {
	repo          media.Repository
	store         storage.BlobStore
	metrics       *metrics.Metrics
	log           logging.Logger
	maxUploadSize int64
	now           func() time.Time
}

// New returns a Handler storing objects in store and rows in repo.
// Bodies larger than maxUploadSize are refused.
func New(repo media.Repository, store storage.BlobStore, m *metrics.Metrics, maxUploadSize int64, log logging.Logger) *Handler {
	return &Handler{
		repo:          repo,
		store:         store,
		metrics:       m,
		log:           log,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// Router wires every endpoint. The media routes require a device token
// signed with secret.
func (h *Handler) Router(secret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log))

	r.GET(api.HealthPath, Health)
	r.GET(MetricsPath, gin.WrapH(h.metrics.Handler()))

	g := r.Group(api.MediaPath, AuthMiddleware(secret))
	g.POST("upload", h.Upload)
	g.DELETE(":id", h.Delete)

	return r
}

// Health reports liveness. It needs no token.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
