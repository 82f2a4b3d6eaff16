package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nightchat/internal/enums"
	"nightchat/internal/models"
)

// fakeConversationAPI serves a fixed ascending history slice and counts
// every call so tests can assert how often the network was hit.
type fakeConversationAPI struct {
	mu sync.Mutex

	history       []models.Message
	conversations []models.Conversation
	profiles      map[string]models.PublicProfile

	getMessagesCalls      int
	sendCalls             int
	markReadCalls         int
	getConversationsCalls int
	getProfileCalls       int

	failGetMessages   error
	failSend          error
	failMarkRead      error
	failConversations error

	// When set, the matching call blocks until the channel is closed.
	blockGetMessages      chan struct{}
	blockGetConversations chan struct{}
}

func newFakeConversationAPI() *fakeConversationAPI {
	return &fakeConversationAPI{
		profiles: map[string]models.PublicProfile{},
	}
}

func (f *fakeConversationAPI) GetMessages(ctx context.Context, conversationId, before string, limit int) ([]models.Message, error) {
	f.mu.Lock()
	f.getMessagesCalls++
	block := f.blockGetMessages
	fail := f.failGetMessages
	history := make([]models.Message, 0, len(f.history))
	for _, m := range f.history {
		if m.ConversationID == conversationId {
			history = append(history, m)
		}
	}
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail != nil {
		return nil, fail
	}

	end := len(history)
	if before != "" {
		end = 0
		for i, m := range history {
			if m.ID == before {
				end = i
				break
			}
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	page := make([]models.Message, end-start)
	copy(page, history[start:end])
	return page, nil
}

func (f *fakeConversationAPI) SendMessage(ctx context.Context, conversationId, content, messageType string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.failSend != nil {
		return nil, f.failSend
	}
	message := models.Message{
		ID:             fmt.Sprintf("srv-%d", f.sendCalls),
		ConversationID: conversationId,
		SenderID:       "me",
		Content:        content,
		MessageType:    messageType,
		CreatedAt:      time.Now(),
	}
	f.history = append(f.history, message)
	return &message, nil
}

func (f *fakeConversationAPI) MarkConversationRead(ctx context.Context, conversationId, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	return f.failMarkRead
}

func (f *fakeConversationAPI) GetConversations(ctx context.Context, userId string) ([]models.Conversation, error) {
	f.mu.Lock()
	f.getConversationsCalls++
	block := f.blockGetConversations
	fail := f.failConversations
	conversations := f.conversations
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail != nil {
		return nil, fail
	}
	return conversations, nil
}

func (f *fakeConversationAPI) GetPublicProfile(ctx context.Context, entityId string) (*models.PublicProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getProfileCalls++
	profile, ok := f.profiles[entityId]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", entityId)
	}
	return &profile, nil
}

func (f *fakeConversationAPI) messageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getMessagesCalls
}

func (f *fakeConversationAPI) conversationCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getConversationsCalls
}

// fakeLiveChannel records join/leave traffic and lets tests push messages
// as if the socket delivered them.
type fakeLiveChannel struct {
	mu      sync.Mutex
	handler func(models.Message)
	joins   []string
	leaves  int
	closes  int
	joined  bool
	current string
}

func (f *fakeLiveChannel) OnMessage(handler func(models.Message)) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

func (f *fakeLiveChannel) Join(conversationId string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joined && f.current == conversationId {
		return
	}
	if f.joined {
		f.leaves++
	}
	f.joins = append(f.joins, conversationId)
	f.current = conversationId
	f.joined = true
}

func (f *fakeLiveChannel) Leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joined {
		f.leaves++
		f.joined = false
	}
}

func (f *fakeLiveChannel) Close() {
	f.Leave()
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
}

func (f *fakeLiveChannel) push(message models.Message) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(message)
	}
}

func testMessage(id, conversationId string, createdAt time.Time) models.Message {
	return models.Message{
		ID:               id,
		ConversationID:   conversationId,
		SenderID:         "sender-1",
		SenderEntityType: enums.ENTITY_TYPE_USER,
		Content:          "content of " + id,
		MessageType:      enums.MESSAGE_TYPE_TEXT,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func seedHistory(conversationId string, count int, base time.Time) []models.Message {
	history := make([]models.Message, 0, count)
	for i := 0; i < count; i++ {
		history = append(history, testMessage(fmt.Sprintf("m%d", i+1), conversationId, base.Add(time.Duration(i)*time.Minute)))
	}
	return history
}
