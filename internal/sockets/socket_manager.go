package sockets

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"nightchat/internal/errs"
	"nightchat/internal/models"
	"nightchat/internal/msgs"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type subscription struct {
	event          string
	conversationId string
	handler        func(models.SocketEvent)
}

// SocketManager owns the process-wide websocket connection. Screens only
// subscribe and emit through it; they never close the connection
// themselves. Events are JSON-framed as models.SocketEvent. Writes are
// serialized; reads run on a single pump goroutine. On read failure the
// manager reconnects with a fixed wait and re-fires its connect handlers,
// so channel subscribers can re-join their rooms.
type SocketManager struct {
	mu            sync.Mutex
	writeMu       sync.Mutex
	url           string
	token         string
	reconnectWait time.Duration
	logger        zerolog.Logger

	conn      *websocket.Conn
	connected bool
	closed    bool
	epoch     int

	subscriptions      map[int]*subscription
	nextSubId          int
	connectHandlers    map[int]func()
	nextConnectId      int
	disconnectHandlers map[int]func()
	nextDisconnectId   int
}

func NewSocketManager(url, token string, reconnectWait time.Duration, logger zerolog.Logger) *SocketManager {
	return &SocketManager{
		url:                url,
		token:              token,
		reconnectWait:      reconnectWait,
		logger:             logger.With().Str("component", "socket").Logger(),
		subscriptions:      make(map[int]*subscription),
		connectHandlers:    make(map[int]func()),
		disconnectHandlers: make(map[int]func()),
	}
}

// Connect dials the socket endpoint and starts the read pump. Each
// successful connection bumps the epoch, which join logic uses to absorb
// duplicate connect notifications.
func (sm *SocketManager) Connect(ctx context.Context) error {
	header := http.Header{}
	if sm.token != "" {
		header.Set("Authorization", "Bearer "+sm.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, sm.url, header)
	if err != nil {
		return err
	}

	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		_ = conn.Close()
		return errs.ErrSocketNotConnected
	}
	sm.conn = conn
	sm.connected = true
	sm.epoch++
	handlers := make([]func(), 0, len(sm.connectHandlers))
	for _, handler := range sm.connectHandlers {
		handlers = append(handlers, handler)
	}
	sm.mu.Unlock()

	sm.logger.Info().Msg(msgs.MsgConnectionEstablished)

	go sm.readPump(conn)

	for _, handler := range handlers {
		handler()
	}
	return nil
}

func (sm *SocketManager) readPump(conn *websocket.Conn) {
	for {
		var event models.SocketEvent
		if err := conn.ReadJSON(&event); err != nil {
			sm.handleDisconnect(conn, err)
			return
		}
		sm.dispatch(event)
	}
}

func (sm *SocketManager) handleDisconnect(conn *websocket.Conn, cause error) {
	sm.mu.Lock()
	if sm.conn != conn {
		// A newer connection already replaced this one.
		sm.mu.Unlock()
		return
	}
	sm.conn = nil
	sm.connected = false
	closed := sm.closed
	handlers := make([]func(), 0, len(sm.disconnectHandlers))
	for _, handler := range sm.disconnectHandlers {
		handlers = append(handlers, handler)
	}
	sm.mu.Unlock()

	_ = conn.Close()

	for _, handler := range handlers {
		handler()
	}

	if closed {
		return
	}

	sm.logger.Warn().Err(cause).Msg(msgs.MsgConnectionLost)
	go sm.reconnectLoop()
}

func (sm *SocketManager) reconnectLoop() {
	for {
		time.Sleep(sm.reconnectWait)

		sm.mu.Lock()
		if sm.closed || sm.connected {
			sm.mu.Unlock()
			return
		}
		sm.mu.Unlock()

		if err := sm.Connect(context.Background()); err != nil {
			sm.logger.Warn().Err(err).Msg("reconnect attempt failed")
			continue
		}
		return
	}
}

func (sm *SocketManager) dispatch(event models.SocketEvent) {
	sm.mu.Lock()
	handlers := make([]func(models.SocketEvent), 0)
	for _, sub := range sm.subscriptions {
		if sub.event != event.Event {
			continue
		}
		if sub.conversationId != "" && sub.conversationId != event.ConversationID {
			continue
		}
		handlers = append(handlers, sub.handler)
	}
	sm.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Emit sends one event frame. Payload may be nil.
func (sm *SocketManager) Emit(event, conversationId string, payload interface{}) error {
	sm.mu.Lock()
	conn := sm.conn
	connected := sm.connected
	sm.mu.Unlock()

	if !connected || conn == nil {
		return errs.ErrSocketNotConnected
	}

	frame := models.SocketEvent{
		Event:          event,
		ConversationID: conversationId,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		frame.Payload = raw
	}

	sm.writeMu.Lock()
	defer sm.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

// Subscribe registers a handler for one event name, optionally scoped to a
// conversation id (empty id matches every conversation). The returned
// function removes the subscription.
func (sm *SocketManager) Subscribe(event, conversationId string, handler func(models.SocketEvent)) func() {
	sm.mu.Lock()
	id := sm.nextSubId
	sm.nextSubId++
	sm.subscriptions[id] = &subscription{
		event:          event,
		conversationId: conversationId,
		handler:        handler,
	}
	sm.mu.Unlock()

	return func() {
		sm.mu.Lock()
		delete(sm.subscriptions, id)
		sm.mu.Unlock()
	}
}

// OnConnect registers a handler fired after every successful (re)connect.
func (sm *SocketManager) OnConnect(handler func()) func() {
	sm.mu.Lock()
	id := sm.nextConnectId
	sm.nextConnectId++
	sm.connectHandlers[id] = handler
	sm.mu.Unlock()

	return func() {
		sm.mu.Lock()
		delete(sm.connectHandlers, id)
		sm.mu.Unlock()
	}
}

func (sm *SocketManager) OnDisconnect(handler func()) func() {
	sm.mu.Lock()
	id := sm.nextDisconnectId
	sm.nextDisconnectId++
	sm.disconnectHandlers[id] = handler
	sm.mu.Unlock()

	return func() {
		sm.mu.Lock()
		delete(sm.disconnectHandlers, id)
		sm.mu.Unlock()
	}
}

func (sm *SocketManager) Connected() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.connected
}

// Epoch counts successful connections since start.
func (sm *SocketManager) Epoch() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.epoch
}

func (sm *SocketManager) Close() {
	sm.mu.Lock()
	sm.closed = true
	conn := sm.conn
	sm.conn = nil
	sm.connected = false
	sm.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}
