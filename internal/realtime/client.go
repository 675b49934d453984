package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// MessageSender persists a chat message and relays it to both parties.
type MessageSender interface {
	Send(ctx context.Context, senderID, receiverID, content string) error
}

type sendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// Client pumps frames between one websocket connection and the hub.
type Client struct {
	conn    *websocket.Conn
	hub     *Hub
	session *Session
	sender  MessageSender
	logger  *zap.Logger
}

func NewClient(conn *websocket.Conn, hub *Hub, sender MessageSender, logger *zap.Logger) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		session: NewSession(),
		sender:  sender,
		logger:  logger,
	}
}

// Run serves the connection until the peer goes away. Frames are handled
// one at a time in arrival order.
func (c *Client) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	c.readPump(ctx)
	<-done
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Leave(c.session)
		c.conn.Close()
	}()

	// Register so Leave closes the queue even if join_room never arrives.
	c.hub.track(c.session)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(frame, &evt); err != nil {
			c.logger.Debug("ignoring malformed frame", zap.Error(err))
			continue
		}
		c.handle(ctx, evt)
	}
}

func (c *Client) handle(ctx context.Context, evt Event) {
	switch evt.Name {
	case EventJoinRoom:
		room, err := parseRoom(evt.Data)
		if err != nil {
			c.logger.Debug("invalid join_room payload", zap.Error(err))
			return
		}
		c.hub.Join(room, c.session)
		c.logger.Debug("session joined room", zap.String("room", room))

	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.logger.Debug("invalid send_message payload", zap.Error(err))
			return
		}
		// Failures are logged by the sender; no error frame goes back.
		_ = c.sender.Send(ctx, p.SenderID, p.ReceiverID, p.Content)

	default:
		c.logger.Debug("unhandled event", zap.String("event", evt.Name))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.session.Send():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseRoom accepts a user id sent either as a JSON string or a number.
func parseRoom(data json.RawMessage) (string, error) {
	var room string
	if err := json.Unmarshal(data, &room); err == nil {
		room = strings.TrimSpace(room)
		if room == "" {
			return "", errors.New("empty room")
		}
		return room, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
