package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sseHeartbeat = 30 * time.Second

// StreamHandler serves the long-lived realtime connections. Its routes must
// not sit behind the request timeout.
type StreamHandler struct {
	hub      *realtime.Hub
	sender   realtime.MessageSender
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewStreamHandler(hub *realtime.Hub, sender realtime.MessageSender, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		sender: sender,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is open on the REST API as well.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.ServeWS)
	r.Get("/users/{id}/events", h.StreamEvents)
}

// GET /ws
// Clients send join_room with their user id, then send_message frames.
func (h *StreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	realtime.NewClient(conn, h.hub, h.sender, h.logger).Run(r.Context())
}

// GET /users/{id}/events
// Server-sent events carrying the same frames the user's socket room gets.
func (h *StreamHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		utils.BadRequest(w, "user id is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.InternalError(w, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := realtime.NewSession()
	h.hub.Join(userID, session)
	defer h.hub.Leave(session)

	ctx := r.Context()
	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-session.Send():
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
