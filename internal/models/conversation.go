package models

import (
	"time"
)

type Conversation struct {
	ID                  string            `json:"_id"`
	Type                string            `json:"type"`
	Participants        []string          `json:"participants"`
	LastMessageID       *string           `json:"last_message_id"`
	LastMessageContent  string            `json:"last_message_content"`
	LastMessageTime     *time.Time        `json:"last_message_time"`
	ParticipantStatuses map[string]string `json:"participantStatuses"`
	UnreadCount         int               `json:"unreadCount"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	Revision            int               `json:"__v"`
}

// OtherParticipants derives the participant list minus the current user.
// The result is never stored; it is recomputed from Participants on demand.
func (conversation *Conversation) OtherParticipants(currentUserId string) []string {
	others := []string{}
	for _, participant := range conversation.Participants {
		if participant != currentUserId {
			others = append(others, participant)
		}
	}
	return others
}
