package chat

import (
	"sort"
	"sync"

	"nightchat/internal/errs"
	"nightchat/internal/models"
)

// MessageStore holds the ordered message set for exactly one conversation.
// Messages are kept chronologically ascending internally; the inverted flag
// only affects the sequence produced by All. Every mutation is idempotent on
// message id, which absorbs the race between a send confirmation and the
// same message arriving over the socket.
type MessageStore struct {
	mu       sync.Mutex
	inverted bool
	messages []models.Message
	ids      map[string]struct{}
	onUpdate func()
}

func NewMessageStore(inverted bool) *MessageStore {
	return &MessageStore{
		inverted: inverted,
		messages: []models.Message{},
		ids:      make(map[string]struct{}),
	}
}

// SetOnUpdate registers a callback fired after every mutation that changed
// the store. Used by renderers; the store itself performs no I/O.
func (store *MessageStore) SetOnUpdate(onUpdate func()) {
	store.mu.Lock()
	store.onUpdate = onUpdate
	store.mu.Unlock()
}

func validateMessage(message *models.Message) error {
	if message.ID == "" {
		return errs.ErrMissingMessageId
	}
	if message.ConversationID == "" {
		return errs.ErrMissingConversationId
	}
	if message.CreatedAt.IsZero() {
		return errs.ErrMissingTimestamp
	}
	return nil
}

// Replace discards the current content and installs list as the full known
// set. Used after a full reload.
func (store *MessageStore) Replace(list []models.Message) error {
	for i := range list {
		if err := validateMessage(&list[i]); err != nil {
			return err
		}
	}

	store.mu.Lock()
	store.messages = make([]models.Message, len(list))
	copy(store.messages, list)
	sort.SliceStable(store.messages, func(i, j int) bool {
		return store.messages[i].CreatedAt.Before(store.messages[j].CreatedAt)
	})
	store.ids = make(map[string]struct{}, len(list))
	for i := range store.messages {
		store.ids[store.messages[i].ID] = struct{}{}
	}
	onUpdate := store.onUpdate
	store.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
	return nil
}

// PrependOlder merges a page of older history. Ids already present are
// dropped, never inserted twice.
func (store *MessageStore) PrependOlder(list []models.Message) error {
	for i := range list {
		if err := validateMessage(&list[i]); err != nil {
			return err
		}
	}

	store.mu.Lock()
	changed := false
	for i := range list {
		if _, exists := store.ids[list[i].ID]; exists {
			continue
		}
		store.messages = append(store.messages, list[i])
		store.ids[list[i].ID] = struct{}{}
		changed = true
	}
	if changed {
		sort.SliceStable(store.messages, func(i, j int) bool {
			return store.messages[i].CreatedAt.Before(store.messages[j].CreatedAt)
		})
	}
	onUpdate := store.onUpdate
	store.mu.Unlock()

	if changed && onUpdate != nil {
		onUpdate()
	}
	return nil
}

// AppendLive inserts a pushed or freshly sent message. Inserting an id the
// store already holds is a no-op.
func (store *MessageStore) AppendLive(message models.Message) error {
	if err := validateMessage(&message); err != nil {
		return err
	}

	store.mu.Lock()
	if _, exists := store.ids[message.ID]; exists {
		store.mu.Unlock()
		return nil
	}
	store.messages = append(store.messages, message)
	store.ids[message.ID] = struct{}{}
	// Socket delivery order is not creation order; keep the slice sorted.
	sort.SliceStable(store.messages, func(i, j int) bool {
		return store.messages[i].CreatedAt.Before(store.messages[j].CreatedAt)
	})
	onUpdate := store.onUpdate
	store.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
	return nil
}

// All returns the ordered sequence: oldest first, or newest first when the
// store is inverted. The two orderings are never mixed in one result.
func (store *MessageStore) All() []models.Message {
	store.mu.Lock()
	defer store.mu.Unlock()

	result := make([]models.Message, len(store.messages))
	if store.inverted {
		for i := range store.messages {
			result[len(store.messages)-1-i] = store.messages[i]
		}
	} else {
		copy(result, store.messages)
	}
	return result
}

func (store *MessageStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.messages)
}

// Oldest returns the chronologically oldest held message. The pagination
// cursor anchors here regardless of render direction.
func (store *MessageStore) Oldest() (models.Message, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.messages) == 0 {
		return models.Message{}, false
	}
	return store.messages[0], true
}

func (store *MessageStore) Newest() (models.Message, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.messages) == 0 {
		return models.Message{}, false
	}
	return store.messages[len(store.messages)-1], true
}

func (store *MessageStore) Contains(messageId string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, exists := store.ids[messageId]
	return exists
}

func (store *MessageStore) Clear() {
	store.mu.Lock()
	store.messages = []models.Message{}
	store.ids = make(map[string]struct{})
	onUpdate := store.onUpdate
	store.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}
