package interfaces

import (
	"nightchat/internal/models"
)

// LiveChannel is a conversation-scoped subscription on the shared socket
// connection. Implementations must absorb duplicate joins and emit exactly
// one leave per join.
type LiveChannel interface {
	OnMessage(handler func(models.Message))
	Join(conversationId string)
	Leave()
	Close()
}
