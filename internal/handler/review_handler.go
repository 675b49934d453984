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

type ReviewHandler struct {
	reviewService service.ReviewService
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validate:      validator.New(),
		logger:        logger,
	}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reviews", h.SubmitReview)
}

// POST /reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	review, err := h.reviewService.SubmitReview(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Created(w, review)
}
