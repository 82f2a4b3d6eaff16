package interfaces

import (
	"context"

	"nightchat/internal/models"
)

// ConversationAPI is the REST contract the conversation core consumes.
type ConversationAPI interface {
	GetConversations(ctx context.Context, userId string) ([]models.Conversation, error)
	GetMessages(ctx context.Context, conversationId, before string, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationId, content, messageType string) (*models.Message, error)
	MarkConversationRead(ctx context.Context, conversationId, userId string) error
	GetPublicProfile(ctx context.Context, entityId string) (*models.PublicProfile, error)
}
