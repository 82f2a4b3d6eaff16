package models

type ConversationListResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int64          `json:"total"`
}
