package msgs

const (
	MsgOperationSuccessful   = "operation successful"
	MsgOperationFailed       = "operation failed"
	MsgSendFailed            = "could not send message"
	MsgMessageSent           = "message sent"
	MsgConversationRead      = "conversation marked as read"
	MsgConversationFallback  = "Conversation"
	MsgConnectionEstablished = "socket connection established"
	MsgConnectionLost        = "socket connection lost"
)
