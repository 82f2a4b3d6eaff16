package enums

const (
	SOCKET_EVENT_JOIN_CONVERSATION  = "join_conversation"
	SOCKET_EVENT_LEAVE_CONVERSATION = "leave_conversation"
	SOCKET_EVENT_NEW_MESSAGE        = "new_message"
)
