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

type MessageHandler struct {
	messageService service.MessageService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewMessageHandler(messageService service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validate:       validator.New(),
		logger:         logger,
	}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations/{userId}", h.ListConversations)
	r.Get("/messages/{userId}/{otherUserId}", h.ListMessages)
	r.Post("/messages", h.SendMessage)
}

// GET /conversations/{userId}
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.messageService.ListConversations(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, conversations)
}

// GET /messages/{userId}/{otherUserId}
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messageService.ListMessages(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "otherUserId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Success(w, http.StatusOK, messages)
}

// POST /messages
// HTTP counterpart of the send_message socket event for clients without a
// socket. Unlike the socket path, failures are returned.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	msg, err := h.messageService.SendMessage(r.Context(), req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	utils.Created(w, msg)
}
