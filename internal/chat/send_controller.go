package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"nightchat/internal/enums"
	"nightchat/internal/errs"
	"nightchat/internal/interfaces"
	"nightchat/internal/models"

	"github.com/rs/zerolog"
)

// SendController submits new messages confirm-first: nothing is shown
// locally until the server acknowledges the create. On success the caller
// reloads the visible window so the new message and anything that arrived
// concurrently render consistently.
type SendController struct {
	mu             sync.Mutex
	api            interfaces.ConversationAPI
	logger         zerolog.Logger
	conversationId string
}

func NewSendController(api interfaces.ConversationAPI, logger zerolog.Logger, conversationId string) *SendController {
	return &SendController{
		api:            api,
		logger:         logger.With().Str("component", "send").Str("conversation_id", conversationId).Logger(),
		conversationId: conversationId,
	}
}

// Send validates and submits content. Content that is empty after trimming
// is rejected locally without any network call. On failure the caller must
// keep the input intact so the user can retry.
func (sc *SendController) Send(ctx context.Context, content, messageType string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.ErrEmptyContent
	}
	if !enums.IsValidMessageType(messageType) {
		return nil, errs.ErrInvalidMessageType
	}

	sc.mu.Lock()
	conversationId := sc.conversationId
	sc.mu.Unlock()

	message, err := sc.api.SendMessage(ctx, conversationId, content, messageType)
	if err != nil {
		sc.logger.Warn().Err(err).Msg("send failed")
		return nil, fmt.Errorf("send message: %w", err)
	}

	sc.logger.Debug().Str("message_id", message.ID).Msg("send confirmed")
	return message, nil
}

func (sc *SendController) Reset(conversationId string) {
	sc.mu.Lock()
	sc.conversationId = conversationId
	sc.mu.Unlock()
}
