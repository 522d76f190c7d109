package amqp

import (
	"encoding/json"
	"errors"
	"fmt"

	"fintrack/internal/activity"
)

// messageVersion is bumped when the wire shape of an event changes.
const messageVersion = 1

// eventMessage is the JSON body carried by each delivery.
type eventMessage struct {
	Version int            `json:"version"`
	Event   activity.Event `json:"event"`
}

// EncodeEvent converts an event to its wire JSON.
func EncodeEvent(e activity.Event) ([]byte, error) {
	return json.Marshal(eventMessage{Version: messageVersion, Event: e})
}

// DecodeEvent parses a delivery body. Bodies without an id or kind, or with
// an unknown version, are rejected.
func DecodeEvent(data []byte) (activity.Event, error) {
	var msg eventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return activity.Event{}, err
	}
	if msg.Version != messageVersion {
		return activity.Event{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	if msg.Event.ID == "" || msg.Event.Kind == "" {
		return activity.Event{}, errors.New("event id and kind are required")
	}
	return msg.Event, nil
}
