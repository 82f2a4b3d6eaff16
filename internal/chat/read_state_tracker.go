package chat

import (
	"context"
	"sync"

	"nightchat/internal/interfaces"

	"github.com/rs/zerolog"
)

// ReadStateTracker reports the conversation as read exactly once per screen
// activation. Read state is best-effort: a network failure is logged and
// swallowed, never surfaced.
type ReadStateTracker struct {
	mu             sync.Mutex
	api            interfaces.ConversationAPI
	logger         zerolog.Logger
	conversationId string
	userId         string
	done           bool
}

func NewReadStateTracker(api interfaces.ConversationAPI, logger zerolog.Logger, conversationId, userId string) *ReadStateTracker {
	return &ReadStateTracker{
		api:            api,
		logger:         logger.With().Str("component", "read_state").Str("conversation_id", conversationId).Logger(),
		conversationId: conversationId,
		userId:         userId,
	}
}

// MarkRead fires the mark-read call once. Re-invocations are no-ops, as are
// calls made before the conversation id and user id have resolved — those do
// not consume the one-shot guard, so the call still happens once context
// arrives.
func (rst *ReadStateTracker) MarkRead(ctx context.Context) {
	rst.mu.Lock()
	if rst.done || rst.conversationId == "" || rst.userId == "" {
		rst.mu.Unlock()
		return
	}
	// Consume the guard before issuing the call so a re-entrant trigger
	// cannot double-fire while the request is in flight.
	rst.done = true
	conversationId, userId := rst.conversationId, rst.userId
	rst.mu.Unlock()

	if err := rst.api.MarkConversationRead(ctx, conversationId, userId); err != nil {
		rst.logger.Warn().Err(err).Msg("mark read failed")
	}
}

func (rst *ReadStateTracker) Done() bool {
	rst.mu.Lock()
	defer rst.mu.Unlock()
	return rst.done
}

// Reset re-arms the tracker for a new activation (conversation switch).
func (rst *ReadStateTracker) Reset(conversationId string) {
	rst.mu.Lock()
	rst.conversationId = conversationId
	rst.done = false
	rst.mu.Unlock()
}
