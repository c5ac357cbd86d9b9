package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"pocket-mini-server/internal/domain"
	"pocket-mini-server/internal/ingest"
	"pocket-mini-server/internal/middleware"
	"pocket-mini-server/internal/service"
	"pocket-mini-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

const (
	uploadField = "file"
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

type UploadHandler struct {
	ingestor *ingest.Ingestor
	actions  *service.ActionService
	maxBytes int64
	validate *validator.Validate
}

func NewUploadHandler(ingestor *ingest.Ingestor, actions *service.ActionService, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		ingestor: ingestor,
		actions:  actions,
		maxBytes: maxBytes,
		validate: validator.New(),
	}
}

// Upload previews a multipart "file" part. Parse failures are reported inside
// the preview with status 200.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.TooLarge(w, fmt.Sprintf("Upload exceeds %d bytes", h.maxBytes))
			return
		}
		response.BadRequest(w, "Invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile(uploadField)
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer part.Close()

	if header.Size > h.maxBytes {
		response.TooLarge(w, fmt.Sprintf("Upload exceeds %d bytes", h.maxBytes))
		return
	}

	content, err := io.ReadAll(io.LimitReader(part, h.maxBytes+1))
	if err != nil {
		response.BadRequest(w, "Failed to read upload")
		return
	}
	if int64(len(content)) > h.maxBytes {
		response.TooLarge(w, fmt.Sprintf("Upload exceeds %d bytes", h.maxBytes))
		return
	}

	preview := h.ingestor.Ingest(ingest.NewFile(header.Filename, content))
	response.Success(w, preview)
}

// SaveToNotes adds an "Uploaded from <name>" note once the user confirms.
func (h *UploadHandler) SaveToNotes(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	state := h.actions.SaveUploadToNotes(middleware.GetStore(r), req.Filename)
	response.Message(w, &domain.ActionResponse{State: state}, "File contents saved to notes!")
}
