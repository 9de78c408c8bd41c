package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	service "github.com/okian/hypetorch/internal/app"
	"github.com/okian/hypetorch/pkg/logger"
)

// uploadFormField is the multipart part holding the document.
const uploadFormField = "file"

// UploadHandler replaces the stored document.
type UploadHandler struct {
	deps     Dependencies
	maxBytes int64
	logger   logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Dependencies, maxBytes int64, l logger.Logger) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

// HandleUpload handles POST /api/upload_json. The document arrives either as
// the "file" part of a multipart form or as a raw application/json body.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	raw, err := h.readDocument(r)
	if err != nil {
		h.logger.Warn(r.Context(), "reading upload failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	ack, err := h.deps.Upload(r.Context(), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *UploadHandler) readDocument(r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	if mediaType != "multipart/form-data" {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, badUpload(err)
		}
		return raw, nil
	}

	// Parts beyond the in-memory threshold spill to temp files.
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, badUpload(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile(uploadFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%w: missing %q form field", service.ErrBadUpload, uploadFormField)
		}
		return nil, badUpload(err)
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, badUpload(err)
	}
	return raw, nil
}

// badUpload keeps size-limit failures distinguishable from malformed input.
func badUpload(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %w", service.ErrBadUpload, err)
}
