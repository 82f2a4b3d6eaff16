package models

type SendMessageRequestBody struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

type MarkReadRequestBody struct {
	UserID string `json:"user_id"`
}
