package enums

import "slices"

const (
	MESSAGE_TYPE_TEXT  = "text"
	MESSAGE_TYPE_IMAGE = "image"
	MESSAGE_TYPE_VIDEO = "video"
	MESSAGE_TYPE_AUDIO = "audio"
	MESSAGE_TYPE_FILE  = "file"
)

const (
	CONVERSATION_TYPE_DIRECT = "direct"
	CONVERSATION_TYPE_GROUP  = "group"
)

const (
	ENTITY_TYPE_USER  = "user"
	ENTITY_TYPE_VENUE = "venue"
)

var messageTypes = []string{
	MESSAGE_TYPE_TEXT,
	MESSAGE_TYPE_IMAGE,
	MESSAGE_TYPE_VIDEO,
	MESSAGE_TYPE_AUDIO,
	MESSAGE_TYPE_FILE,
}

func IsValidMessageType(messageType string) bool {
	return slices.Contains(messageTypes, messageType)
}
