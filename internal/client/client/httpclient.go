package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
)

// maxErrorBody bounds how much of a failed response is kept as error text.
const maxErrorBody = 4 << 10

type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient returns a client for the receiver at baseURL. Each request is
// bounded by timeout in addition to the caller's context.
func NewHTTPClient(baseURL, token string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// UploadFilename is the name the content is submitted under.
func UploadFilename(rec *models.MediaRecord) string {
	if rec.MediaType == models.MediaTypeDocument && rec.OriginalFilename != "" {
		return rec.OriginalFilename
	}
	return "capture-" + rec.ID + ".jpg"
}

func uploadMetadata(rec *models.MediaRecord) api.UploadMetadata {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.UploadMetadata{
		ID:         rec.ID,
		SubjectID:  rec.SubjectID,
		MediaType:  string(rec.MediaType),
		CapturedAt: rec.CapturedAt,
		WorkID:     rec.WorkID,
		Caption:    rec.DisplayCaption(),
		Tags:       tags,
		Width:      rec.Width,
		Height:     rec.Height,
		FileName:   UploadFilename(rec),
		MimeType:   rec.MimeType,
		Checksum:   rec.Checksum,
	}
}

func encodeUpload(rec *models.MediaRecord, content []byte) (*bytes.Buffer, string, error) {
	meta, err := json.Marshal(uploadMetadata(rec))
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		api.FieldFile, escapeQuotes(UploadFilename(rec))))
	contentType := rec.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(api.FieldMetadata, string(meta)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *HTTPClient) Upload(ctx context.Context, rec *models.MediaRecord, content []byte) (*UploadResult, error) {
	body, contentType, err := encodeUpload(rec, content)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.UploadPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.mapStatus(resp)
	}

	var out api.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", common.ErrUploadRejected, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "success not acknowledged"
		}
		return nil, fmt.Errorf("%w: %s", common.ErrUploadRejected, msg)
	}
	if out.Media == nil || out.Media.StoragePath == "" {
		return nil, fmt.Errorf("%w: response has no storage path", common.ErrUploadRejected)
	}

	return &UploadResult{StoragePath: out.Media.StoragePath, PublicURL: out.Media.PublicURL}, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+api.MediaPath+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return c.mapStatus(resp)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+api.HealthPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (c *HTTPClient) mapStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))
	var e api.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", common.ErrUploadRejected, resp.StatusCode, msg)
	}
}
