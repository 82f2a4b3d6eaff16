package models

import (
	"encoding/json"
)

type SocketEvent struct {
	Event          string          `json:"event"`
	ConversationID string          `json:"conversation_id"`
	Payload        json.RawMessage `json:"payload"`
}
