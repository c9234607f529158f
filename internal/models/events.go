package models

import (
	"encoding/json"
)

// EventType discriminates outbound channel messages.
type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeError  EventType = "error"
)

// MessageStartProcessing is the only inbound command.
const MessageStartProcessing = "start_processing"

// InboundMessage is a client command; Data is decoded by type.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// StatusEvent is an outbound progress or error message.
type StatusEvent struct {
	Type    EventType
	Message string
	Data    map[string]any
}

func Status(message string) StatusEvent {
	return StatusEvent{Type: EventTypeStatus, Message: message}
}

func StatusWithData(message string, data map[string]any) StatusEvent {
	return StatusEvent{Type: EventTypeStatus, Message: message, Data: data}
}

func Error(message string) StatusEvent {
	return StatusEvent{Type: EventTypeError, Message: message}
}

// MarshalJSON writes status events with a data field (object or null) and
// error events without one.
func (e StatusEvent) MarshalJSON() ([]byte, error) {
	if e.Type == EventTypeError {
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	}
	return json.Marshal(struct {
		Type    EventType      `json:"type"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}{e.Type, e.Message, e.Data})
}
