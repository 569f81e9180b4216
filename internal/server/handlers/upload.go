package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/server/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// StorageKey is where an upload is kept: media/<subject>/<id>/<file name>.
func StorageKey(subjectID, id, fileName string) string {
	return fmt.Sprintf("media/%s/%s/%s", subjectID, id, fileName)
}

// Upload accepts a multipart body with the content under api.FieldFile and
// the JSON api.UploadMetadata under api.FieldMetadata. Re-sending the same
// id replaces the earlier row.
func (h *Handler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	fh, err := c.FormFile(api.FieldFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds size limit")
			return
		}
		h.reject(c, http.StatusBadRequest, "no_file", "file is required")
		return
	}

	var meta api.UploadMetadata
	if err := json.Unmarshal([]byte(c.PostForm(api.FieldMetadata)), &meta); err != nil {
		h.reject(c, http.StatusBadRequest, "metadata", "metadata is not valid JSON")
		return
	}
	if err := validateMetadata(&meta); err != nil {
		h.reject(c, http.StatusBadRequest, "metadata", err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.reject(c, http.StatusBadRequest, "no_file", "cannot read file")
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		h.reject(c, http.StatusBadRequest, "no_file", "cannot read file")
		return
	}

	if meta.Checksum != "" && !strings.EqualFold(meta.Checksum, api.Checksum(data)) {
		h.reject(c, http.StatusBadRequest, "checksum", common.ErrChecksumMismatch.Error())
		return
	}

	fileName := safeFileName(meta.FileName, fh.Filename, meta.ID)
	contentType := meta.MimeType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	key := StorageKey(meta.SubjectID, meta.ID, fileName)

	publicURL, err := h.store.Put(ctx, key, contentType, data)
	if err != nil {
		h.log.Error(ctx, "object store put failed", "id", meta.ID, "key", key, "error", err)
		h.reject(c, http.StatusBadGateway, "storage", "storage unavailable")
		return
	}

	row := &models.Media{
		ID:          meta.ID,
		SubjectID:   meta.SubjectID,
		MediaType:   meta.MediaType,
		WorkID:      meta.WorkID,
		Caption:     meta.Caption,
		Tags:        meta.Tags,
		Width:       meta.Width,
		Height:      meta.Height,
		FileName:    fileName,
		MimeType:    contentType,
		Checksum:    meta.Checksum,
		Size:        int64(len(data)),
		StoragePath: key,
		PublicURL:   publicURL,
		DeviceID:    c.GetString(DeviceIDKey),
		CapturedAt:  meta.CapturedAt,
		UploadedAt:  h.now().UTC(),
	}
	if err := h.repo.Upsert(ctx, row); err != nil {
		h.log.Error(ctx, "media upsert failed", "id", meta.ID, "error", err)
		h.reject(c, http.StatusInternalServerError, "database", "cannot record upload")
		return
	}

	h.metrics.Uploaded(meta.MediaType, len(data))
	h.log.Info(ctx, "media stored", "id", meta.ID, "subject", meta.SubjectID, "key", key, "size", len(data))

	c.JSON(http.StatusOK, api.UploadResponse{
		Success: true,
		Media: &api.Media{
			ID:          meta.ID,
			StoragePath: key,
			PublicURL:   publicURL,
		},
	})
}

func (h *Handler) reject(c *gin.Context, status int, reason, msg string) {
	h.metrics.UploadFailed(reason)
	c.JSON(status, api.UploadResponse{Error: msg})
}

func validateMetadata(m *api.UploadMetadata) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: id is required", common.ErrorIncorrectMetadata)
	case m.SubjectID == "":
		return fmt.Errorf("%w: subject_id is required", common.ErrorIncorrectMetadata)
	case strings.ContainsAny(m.ID, `/\`) || strings.ContainsAny(m.SubjectID, `/\`) || m.ID == ".." || m.SubjectID == "..":
		return fmt.Errorf("%w: ids must not contain path separators", common.ErrorIncorrectMetadata)
	case m.MediaType != "photo" && m.MediaType != "document":
		return fmt.Errorf("%w: media_type must be photo or document", common.ErrorIncorrectMetadata)
	case m.CapturedAt.IsZero():
		return fmt.Errorf("%w: captured_at is required", common.ErrorIncorrectMetadata)
	}
	return nil
}

// safeFileName picks the first usable base name, falling back to the id.
func safeFileName(candidates ...string) string {
	for _, n := range candidates {
		n = path.Base(strings.ReplaceAll(n, `\`, "/"))
		if n != "" && n != "." && n != "/" && n != ".." {
			return n
		}
	}
	return "upload"
}
