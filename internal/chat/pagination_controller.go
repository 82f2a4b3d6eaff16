package chat

import (
	"context"
	"fmt"
	"sync"

	"nightchat/internal/interfaces"

	"github.com/rs/zerolog"
)

// PaginationController drives backward history loading for one conversation
// without duplicate or overlapping requests. A short page (fewer messages
// than the configured page size) means the history is exhausted.
type PaginationController struct {
	mu             sync.Mutex
	api            interfaces.ConversationAPI
	store          *MessageStore
	logger         zerolog.Logger
	conversationId string
	pageSize       int
	epoch          uint64
	hasMore        bool
	inFlight       bool
}

func NewPaginationController(
	api interfaces.ConversationAPI,
	store *MessageStore,
	logger zerolog.Logger,
	conversationId string,
	pageSize int,
) *PaginationController {
	return &PaginationController{
		api:            api,
		store:          store,
		logger:         logger.With().Str("component", "pagination").Str("conversation_id", conversationId).Logger(),
		conversationId: conversationId,
		pageSize:       pageSize,
		hasMore:        true,
	}
}

// LoadOlder fetches the page preceding the oldest held message. Calling it
// while a fetch is in flight, after history is exhausted, or on an empty
// store is a silent no-op; that guard is what keeps rapid scroll events from
// issuing duplicate fetches. The returned bool reports whether a fetch was
// issued.
func (pc *PaginationController) LoadOlder(ctx context.Context) (bool, error) {
	pc.mu.Lock()
	if !pc.hasMore || pc.inFlight {
		pc.mu.Unlock()
		return false, nil
	}
	oldest, ok := pc.store.Oldest()
	if !ok {
		pc.mu.Unlock()
		return false, nil
	}
	pc.inFlight = true
	conversationId := pc.conversationId
	epoch := pc.epoch
	pc.mu.Unlock()

	page, err := pc.api.GetMessages(ctx, conversationId, oldest.ID, pc.pageSize)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.epoch != epoch {
		// The activation this fetch belonged to is gone. Its result must
		// not reach the store, and inFlight now belongs to the successor.
		pc.logger.Debug().Str("before", oldest.ID).Msg("stale history page dropped")
		return false, nil
	}
	pc.inFlight = false
	if err != nil {
		// hasMore stays as it was; the caller decides whether to retry.
		return false, fmt.Errorf("load older messages: %w", err)
	}
	pc.hasMore = len(page) >= pc.pageSize
	if err := pc.store.PrependOlder(page); err != nil {
		return false, fmt.Errorf("merge older messages: %w", err)
	}

	pc.logger.Debug().Int("count", len(page)).Str("before", oldest.ID).Msg("older history merged")
	return true, nil
}

// Reload fetches the newest window without a cursor and replaces the store
// content. Used for the initial load and after a confirmed send.
func (pc *PaginationController) Reload(ctx context.Context) error {
	pc.mu.Lock()
	if pc.inFlight {
		pc.mu.Unlock()
		return nil
	}
	pc.inFlight = true
	conversationId := pc.conversationId
	epoch := pc.epoch
	pc.mu.Unlock()

	page, err := pc.api.GetMessages(ctx, conversationId, "", pc.pageSize)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.epoch != epoch {
		pc.logger.Debug().Msg("stale window reload dropped")
		return nil
	}
	pc.inFlight = false
	if err != nil {
		return fmt.Errorf("reload messages: %w", err)
	}
	pc.hasMore = len(page) >= pc.pageSize
	if err := pc.store.Replace(page); err != nil {
		return fmt.Errorf("install reloaded messages: %w", err)
	}

	pc.logger.Debug().Int("count", len(page)).Msg("window reloaded")
	return nil
}

func (pc *PaginationController) HasMore() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hasMore
}

func (pc *PaginationController) Loading() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.inFlight
}

// Reset re-arms the controller for a fresh conversation activation. A fetch
// still in flight for the previous activation is orphaned and its result
// discarded when it arrives.
func (pc *PaginationController) Reset(conversationId string) {
	pc.mu.Lock()
	pc.conversationId = conversationId
	pc.epoch++
	pc.hasMore = true
	pc.inFlight = false
	pc.mu.Unlock()
}

// Invalidate orphans any in-flight fetch without re-arming the controller.
// Called on screen teardown so a late page cannot touch the store.
func (pc *PaginationController) Invalidate() {
	pc.mu.Lock()
	pc.epoch++
	pc.inFlight = false
	pc.mu.Unlock()
}
