package chat

import (
	"context"
	"sync"

	"nightchat/internal/cache"
	"nightchat/internal/interfaces"
	"nightchat/internal/models"
	"nightchat/internal/msgs"
	"nightchat/internal/utils"

	"github.com/rs/zerolog"
)

type ScreenState int

const (
	StateMounting ScreenState = iota
	StateLoadingMetadata
	StateActive
	StateUnmounted
)

// ScreenDeps are the injected collaborators of one conversation screen.
// Session and Channel are shared resources owned elsewhere; Cache is
// optional.
type ScreenDeps struct {
	Logger         zerolog.Logger
	API            interfaces.ConversationAPI
	Channel        interfaces.LiveChannel
	Cache          *cache.MessageCache
	Session        models.Session
	ConversationID string
	PageSize       int
	Inverted       bool
}

// ConversationScreen orchestrates the conversation flow over one screen
// lifetime: metadata load, channel join, initial history window, one-shot
// read marking, scroll-driven backfill and confirm-first send. A screen
// with an unresolved conversation id or user id stays in a degraded
// mounting state and attempts nothing. After Unmount every late callback is
// discarded instead of being applied to the torn-down store.
type ConversationScreen struct {
	mu             sync.Mutex
	logger         zerolog.Logger
	api            interfaces.ConversationAPI
	channel        interfaces.LiveChannel
	cache          *cache.MessageCache
	session        models.Session
	conversationId string

	store     *MessageStore
	paginator *PaginationController
	sender    *SendController
	tracker   *ReadStateTracker

	conversation *models.Conversation
	profile      *models.PublicProfile
	state        ScreenState
	closed       bool
}

func NewConversationScreen(deps ScreenDeps) *ConversationScreen {
	logger := deps.Logger.With().Str("component", "conversation_screen").Str("conversation_id", deps.ConversationID).Logger()
	store := NewMessageStore(deps.Inverted)
	return &ConversationScreen{
		logger:         logger,
		api:            deps.API,
		channel:        deps.Channel,
		cache:          deps.Cache,
		session:        deps.Session,
		conversationId: deps.ConversationID,
		store:          store,
		paginator:      NewPaginationController(deps.API, store, deps.Logger, deps.ConversationID, deps.PageSize),
		sender:         NewSendController(deps.API, deps.Logger, deps.ConversationID),
		tracker:        NewReadStateTracker(deps.API, deps.Logger, deps.ConversationID, deps.Session.UserID),
		state:          StateMounting,
	}
}

// Mount runs the activation sequence. Missing context (conversation id or
// user id) leaves the screen degraded but never crashes it; every network
// failure here is logged and swallowed, the screen activates with whatever
// it got.
func (screen *ConversationScreen) Mount(ctx context.Context) {
	screen.mu.Lock()
	if screen.closed {
		screen.mu.Unlock()
		return
	}
	if screen.conversationId == "" || screen.session.UserID == "" {
		screen.logger.Warn().Msg("missing conversation id or session, staying degraded")
		screen.mu.Unlock()
		return
	}
	screen.state = StateLoadingMetadata
	screen.mu.Unlock()

	screen.loadMetadata(ctx)

	screen.channel.OnMessage(screen.handleLiveMessage)
	screen.channel.Join(screen.conversationId)

	screen.seedFromCache()

	if err := screen.paginator.Reload(ctx); err != nil {
		screen.logger.Warn().Err(err).Msg("initial history load failed")
	} else {
		screen.cacheStore()
	}

	screen.tracker.MarkRead(ctx)

	screen.mu.Lock()
	if !screen.closed {
		screen.state = StateActive
	}
	screen.mu.Unlock()
}

// Unmount leaves the live channel. Socket events and async results arriving
// afterwards are ignored.
func (screen *ConversationScreen) Unmount() {
	screen.mu.Lock()
	if screen.closed {
		screen.mu.Unlock()
		return
	}
	screen.closed = true
	screen.state = StateUnmounted
	screen.mu.Unlock()

	screen.paginator.Invalidate()
	screen.channel.Close()
	screen.logger.Debug().Msg("screen unmounted")
}

// SwitchConversation re-targets the live screen at another conversation:
// the channel leaves the old room and joins the new one exactly once each,
// the store is emptied and every per-activation guard re-arms.
func (screen *ConversationScreen) SwitchConversation(ctx context.Context, conversationId string) {
	screen.mu.Lock()
	if screen.closed || conversationId == "" || conversationId == screen.conversationId {
		screen.mu.Unlock()
		return
	}
	screen.conversationId = conversationId
	screen.conversation = nil
	screen.profile = nil
	screen.mu.Unlock()

	// Orphan any in-flight fetch before the store is emptied so a page
	// resolving mid-switch cannot land in the new conversation's view.
	screen.paginator.Reset(conversationId)
	screen.store.Clear()
	screen.sender.Reset(conversationId)
	screen.tracker.Reset(conversationId)
	screen.channel.Join(conversationId)

	screen.loadMetadata(ctx)
	screen.seedFromCache()
	if err := screen.paginator.Reload(ctx); err != nil {
		screen.logger.Warn().Err(err).Msg("history load after switch failed")
	} else {
		screen.cacheStore()
	}
	screen.tracker.MarkRead(ctx)
}

// LoadOlder backfills one page of history, typically from a scroll trigger.
// Precondition violations inside the paginator are silent; transport errors
// are logged and returned for optional display.
func (screen *ConversationScreen) LoadOlder(ctx context.Context) error {
	if screen.isClosed() {
		return nil
	}
	fetched, err := screen.paginator.LoadOlder(ctx)
	if err != nil {
		screen.logger.Warn().Err(err).Msg("history backfill failed")
		return err
	}
	if fetched {
		screen.cacheStore()
	}
	return nil
}

// Send submits content confirm-first and, on success, reloads the visible
// window so the confirmed message and any concurrent arrivals render
// consistently. The caller clears the input only on nil return and presents
// msgs.MsgSendFailed otherwise, keeping the input intact for retry.
func (screen *ConversationScreen) Send(ctx context.Context, content, messageType string) error {
	if screen.isClosed() {
		return nil
	}
	if _, err := screen.sender.Send(ctx, content, messageType); err != nil {
		return err
	}
	if err := screen.paginator.Reload(ctx); err != nil {
		screen.logger.Warn().Err(err).Msg("reload after send failed")
	} else {
		screen.cacheStore()
	}
	return nil
}

// Title resolves the header label: participant profile name, then a
// truncated participant id, then a generic fallback.
func (screen *ConversationScreen) Title() string {
	screen.mu.Lock()
	defer screen.mu.Unlock()

	if screen.profile != nil && screen.profile.Name != "" {
		return screen.profile.Name
	}
	if screen.conversation != nil {
		others := screen.conversation.OtherParticipants(screen.session.UserID)
		if len(others) > 0 {
			return utils.TruncateId(others[0])
		}
	}
	return msgs.MsgConversationFallback
}

func (screen *ConversationScreen) Messages() []models.Message {
	return screen.store.All()
}

func (screen *ConversationScreen) State() ScreenState {
	screen.mu.Lock()
	defer screen.mu.Unlock()
	return screen.state
}

func (screen *ConversationScreen) HasMore() bool {
	return screen.paginator.HasMore()
}

func (screen *ConversationScreen) Conversation() *models.Conversation {
	screen.mu.Lock()
	defer screen.mu.Unlock()
	return screen.conversation
}

// SetOnUpdate registers the render callback fired whenever the message set
// changes, from any source.
func (screen *ConversationScreen) SetOnUpdate(onUpdate func()) {
	screen.store.SetOnUpdate(onUpdate)
}

func (screen *ConversationScreen) isClosed() bool {
	screen.mu.Lock()
	defer screen.mu.Unlock()
	return screen.closed
}

func (screen *ConversationScreen) handleLiveMessage(message models.Message) {
	screen.mu.Lock()
	closed := screen.closed
	conversationId := screen.conversationId
	screen.mu.Unlock()

	if closed {
		return
	}
	// Events lagging behind a conversation switch belong to the old room.
	if message.ConversationID != "" && message.ConversationID != conversationId {
		return
	}
	if err := screen.store.AppendLive(message); err != nil {
		screen.logger.Warn().Err(err).Msg("dropping invalid pushed message")
		return
	}
	if screen.cache != nil {
		if err := screen.cache.SaveMessages([]models.Message{message}); err != nil {
			screen.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
}

func (screen *ConversationScreen) loadMetadata(ctx context.Context) {
	screen.mu.Lock()
	conversationId := screen.conversationId
	userId := screen.session.UserID
	screen.mu.Unlock()

	conversations, err := screen.api.GetConversations(ctx, userId)
	if err != nil {
		// Header degrades to the fallback label.
		screen.logger.Warn().Err(err).Msg("conversation metadata load failed")
		return
	}

	var found *models.Conversation
	for i := range conversations {
		if conversations[i].ID == conversationId {
			found = &conversations[i]
			break
		}
	}
	if found == nil {
		screen.logger.Warn().Msg("conversation not present in list")
		return
	}

	screen.mu.Lock()
	if screen.closed || screen.conversationId != conversationId {
		// The screen moved on while the list call was in flight.
		screen.mu.Unlock()
		return
	}
	screen.conversation = found
	screen.mu.Unlock()

	others := found.OtherParticipants(userId)
	if len(others) == 0 {
		return
	}
	profile, err := screen.api.GetPublicProfile(ctx, others[0])
	if err != nil {
		screen.logger.Warn().Err(err).Str("entity_id", others[0]).Msg("profile lookup failed")
		return
	}

	screen.mu.Lock()
	if !screen.closed && screen.conversationId == conversationId {
		screen.profile = profile
	}
	screen.mu.Unlock()
}

// seedFromCache renders locally cached history before the network window
// arrives. Cache problems never block the screen.
func (screen *ConversationScreen) seedFromCache() {
	if screen.cache == nil {
		return
	}
	screen.mu.Lock()
	conversationId := screen.conversationId
	screen.mu.Unlock()

	cached, err := screen.cache.RecentMessages(conversationId, screen.paginator.pageSize)
	if err != nil {
		screen.logger.Warn().Err(err).Msg("cache read failed")
		return
	}
	if len(cached) == 0 {
		return
	}
	if err := screen.store.Replace(cached); err != nil {
		screen.logger.Warn().Err(err).Msg("cached history rejected")
	}
}

func (screen *ConversationScreen) cacheStore() {
	if screen.cache == nil {
		return
	}
	if err := screen.cache.SaveMessages(screen.store.All()); err != nil {
		screen.logger.Warn().Err(err).Msg("cache write failed")
	}
}
