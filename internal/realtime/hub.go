package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const sessionBufferSize = 32

// Session is one connected client. Frames queued for it are read from Send.
type Session struct {
	send   chan []byte
	closed bool // guarded by Hub.mu
}

func NewSession() *Session {
	return &Session{send: make(chan []byte, sessionBufferSize)}
}

// Send is closed when the session leaves the hub.
func (s *Session) Send() <-chan []byte {
	return s.send
}

// Hub maps rooms (user ids) to the sessions joined to them.
type Hub struct {
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
		logger:   logger,
	}
}

// Join adds the session to room. A session may be in many rooms and a room
// may hold many sessions. Once the hub is closed the session is
// disconnected instead.
func (h *Hub) Join(room string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		h.disconnect(s)
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Session]struct{})
	}
	h.rooms[room][s] = struct{}{}

	if h.sessions[s] == nil {
		h.sessions[s] = make(map[string]struct{})
	}
	h.sessions[s][room] = struct{}{}
}

// track registers a session that has not joined any room yet.
func (h *Hub) track(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		h.disconnect(s)
		return
	}

	if h.sessions[s] == nil {
		h.sessions[s] = make(map[string]struct{})
	}
}

// Leave removes the session from every room and closes its queue.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.sessions[s]
	if !ok {
		return
	}
	for room := range rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, s)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.sessions, s)
	h.disconnect(s)
}

// disconnect closes the session's queue once. h.mu must be held.
func (h *Hub) disconnect(s *Session) {
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Deliver queues a raw frame on every session in room. Sessions whose queue
// is full miss the frame.
func (h *Hub) Deliver(room string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.rooms[room] {
		select {
		case s.send <- frame:
		default:
			h.logger.Warn("dropping frame for slow session", zap.String("room", room))
		}
	}
}

// Publish implements Publisher for a single-process deployment.
func (h *Hub) Publish(ctx context.Context, channel string, evt Event) error {
	frame, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	h.Deliver(channel, frame)
	return nil
}

// Close disconnects every session. Later calls to Leave are no-ops and
// sessions that try to join afterwards are disconnected straight away.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.sessions {
		h.disconnect(s)
	}
	h.sessions = make(map[*Session]map[string]struct{})
	h.rooms = make(map[string]map[*Session]struct{})
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
