package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/aditya/go-gigs/internal/service"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const uploadField = "photo"

type UploadHandler struct {
	uploadService service.UploadService
	maxBytes      int64
	logger        *zap.Logger
}

func NewUploadHandler(uploadService service.UploadService, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxBytes: maxBytes, logger: logger}
}

func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.Upload)
}

// POST /upload (multipart, field "photo")
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Allow room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			utils.BadRequest(w, "file too large")
		case errors.Is(err, http.ErrMissingFile):
			utils.BadRequest(w, "no file uploaded")
		default:
			utils.BadRequest(w, "invalid multipart form")
		}
		return
	}
	defer file.Close()

	// One byte over the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		utils.BadRequest(w, "failed to read upload")
		return
	}

	url, err := h.uploadService.UploadPhoto(r.Context(), data)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"photoUrl": url})
}
