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

type PaymentHandler struct {
	paymentService service.PaymentService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validator.New(),
		logger:         logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create-payment-intent", h.CreatePaymentIntent)
}

// POST /create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentIntentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	resp, err := h.paymentService.CreatePaymentIntent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, resp)
}
