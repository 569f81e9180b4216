package handlers

import (
	"errors"
	"net/http"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/gin-gonic/gin"
)

// Delete removes the stored object and then the row. Unknown ids get 404.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	m, err := h.repo.Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		h.metrics.Deleted("not_found")
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "media not found"})
		return
	}
	if err != nil {
		h.log.Error(ctx, "media lookup failed", "id", id, "error", err)
		h.metrics.Deleted("error")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cannot look up media"})
		return
	}

	if err := h.store.Delete(ctx, m.StoragePath); err != nil {
		h.log.Error(ctx, "object store delete failed", "id", id, "key", m.StoragePath, "error", err)
		h.metrics.Deleted("error")
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "storage unavailable"})
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		h.log.Error(ctx, "media delete failed", "id", id, "error", err)
		h.metrics.Deleted("error")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cannot delete media"})
		return
	}

	h.metrics.Deleted("deleted")
	h.log.Info(ctx, "media deleted", "id", id, "key", m.StoragePath)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
