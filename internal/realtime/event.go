package realtime

import (
	"context"
	"encoding/json"
)

// Event names carried on the socket.
const (
	EventJoinRoom       = "join_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventNotification   = "notification"
)

// Event is the wire envelope for every frame: {"event": name, "data": payload}.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(name string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: raw}, nil
}

// Publisher delivers an event to every session joined to channel. Delivery
// to a channel with no sessions is a no-op.
type Publisher interface {
	Publish(ctx context.Context, channel string, evt Event) error
}
