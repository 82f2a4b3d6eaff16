package sockets

import (
	"encoding/json"
	"sync"

	"nightchat/internal/enums"
	"nightchat/internal/models"

	"github.com/rs/zerolog"
)

// ConversationChannel binds to the socket channel of one conversation.
// State machine: unjoined -> joined on Join, joined -> unjoined on Leave or
// conversation switch. A socket reconnect re-fires the join through the
// manager's connect handler; the epoch check absorbs duplicate connect
// notifications so a join is emitted at most once per connection.
type ConversationChannel struct {
	mu             sync.Mutex
	manager        *SocketManager
	logger         zerolog.Logger
	conversationId string
	joined         bool
	joinedEpoch    int
	onMessage      func(models.Message)
	unsubscribe    func()
	offConnect     func()
}

func NewConversationChannel(manager *SocketManager, logger zerolog.Logger) *ConversationChannel {
	channel := &ConversationChannel{
		manager: manager,
		logger:  logger.With().Str("component", "live_channel").Logger(),
	}
	channel.offConnect = manager.OnConnect(channel.rejoin)
	return channel
}

// OnMessage sets the handler invoked for every inbound pushed message on the
// joined conversation. Must be set before Join.
func (ch *ConversationChannel) OnMessage(handler func(models.Message)) {
	ch.mu.Lock()
	ch.onMessage = handler
	ch.mu.Unlock()
}

// Join subscribes to new-message events for conversationId and emits the
// join request. Joining the already-joined conversation is a no-op. Joining
// a different conversation leaves the previous one first, exactly once.
func (ch *ConversationChannel) Join(conversationId string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if conversationId == "" {
		return
	}
	if ch.joined && ch.conversationId == conversationId {
		return
	}
	if ch.joined {
		ch.leaveLocked()
	}

	ch.conversationId = conversationId
	ch.unsubscribe = ch.manager.Subscribe(enums.SOCKET_EVENT_NEW_MESSAGE, conversationId, ch.handleEvent)
	ch.joined = true
	ch.emitJoinLocked()
}

func (ch *ConversationChannel) emitJoinLocked() {
	if err := ch.manager.Emit(enums.SOCKET_EVENT_JOIN_CONVERSATION, ch.conversationId, nil); err != nil {
		// Not connected yet; the connect handler re-runs the join.
		ch.logger.Warn().Err(err).Str("conversation_id", ch.conversationId).Msg("join deferred")
		ch.joinedEpoch = 0
		return
	}
	ch.joinedEpoch = ch.manager.Epoch()
	ch.logger.Debug().Str("conversation_id", ch.conversationId).Msg("joined conversation channel")
}

// rejoin runs on every socket connect notification. The epoch guard keeps a
// collaborator that fires its connect event twice from emitting two joins.
func (ch *ConversationChannel) rejoin() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if !ch.joined {
		return
	}
	if ch.joinedEpoch == ch.manager.Epoch() {
		return
	}
	ch.emitJoinLocked()
}

// Leave emits the leave request for the current conversation and stops
// listening. Leaving while unjoined is a no-op.
func (ch *ConversationChannel) Leave() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.leaveLocked()
}

func (ch *ConversationChannel) leaveLocked() {
	if !ch.joined {
		return
	}
	if ch.unsubscribe != nil {
		ch.unsubscribe()
		ch.unsubscribe = nil
	}
	if err := ch.manager.Emit(enums.SOCKET_EVENT_LEAVE_CONVERSATION, ch.conversationId, nil); err != nil {
		ch.logger.Warn().Err(err).Str("conversation_id", ch.conversationId).Msg("leave not delivered")
	} else {
		ch.logger.Debug().Str("conversation_id", ch.conversationId).Msg("left conversation channel")
	}
	ch.joined = false
	ch.joinedEpoch = 0
}

// Close leaves the channel and detaches from the manager. The underlying
// connection is shared and stays open.
func (ch *ConversationChannel) Close() {
	ch.Leave()
	if ch.offConnect != nil {
		ch.offConnect()
		ch.offConnect = nil
	}
}

func (ch *ConversationChannel) Joined() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.joined
}

func (ch *ConversationChannel) handleEvent(event models.SocketEvent) {
	ch.mu.Lock()
	conversationId := ch.conversationId
	joined := ch.joined
	handler := ch.onMessage
	ch.mu.Unlock()

	if !joined || handler == nil {
		return
	}
	// The subscription is already scoped, but a server broadcasting wider
	// than its rooms must not leak into this conversation.
	if event.ConversationID != "" && event.ConversationID != conversationId {
		return
	}

	var message models.Message
	if err := json.Unmarshal(event.Payload, &message); err != nil {
		ch.logger.Warn().Err(err).Msg("dropping malformed message event")
		return
	}
	if message.ConversationID != "" && message.ConversationID != conversationId {
		return
	}

	handler(message)
}
