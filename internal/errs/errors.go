package errs

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidMessage        = Error("invalid message")
	ErrMissingMessageId      = Error("message id is empty")
	ErrMissingConversationId = Error("conversation id is empty")
	ErrMissingTimestamp      = Error("message timestamp is empty")
	ErrEmptyContent          = Error("message content is empty")
	ErrInvalidMessageType    = Error("invalid message type")
	ErrInvalidToken          = Error("invalid token")
	ErrMissingSession        = Error("session is not resolved")
	ErrSocketNotConnected    = Error("socket is not connected")
	ErrRequestFailed         = Error("request failed")
	ErrConversationNotFound  = Error("conversation not found")
	ErrScreenUnmounted       = Error("screen is unmounted")
	ErrInvalidResponseBody   = Error("invalid response body")
)
