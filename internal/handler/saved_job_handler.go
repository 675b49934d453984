package handler

import (
	"net/http"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/service"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type SavedJobHandler struct {
	savedJobService service.SavedJobService
	validate        *validator.Validate
	logger          *zap.Logger
}

func NewSavedJobHandler(savedJobService service.SavedJobService, logger *zap.Logger) *SavedJobHandler {
	return &SavedJobHandler{
		savedJobService: savedJobService,
		validate:        validator.New(),
		logger:          logger,
	}
}

func (h *SavedJobHandler) RegisterRoutes(r chi.Router) {
	r.Post("/saved-jobs", h.Toggle)
	r.Get("/saved-jobs/{userId}", h.List)
}

// POST /saved-jobs
func (h *SavedJobHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleSavedJobRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	saved, err := h.savedJobService.Toggle(r.Context(), req.UserID, req.JobID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]bool{"saved": saved})
}

// GET /saved-jobs/{userId}
func (h *SavedJobHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.savedJobService.ListJobIDs(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, ids)
}
