package models

import (
	"time"
)

type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Message mirrors the server-side message document. Ids are server-assigned
// and CreatedAt is immutable after creation.
type Message struct {
	ID               string       `json:"_id"`
	ConversationID   string       `json:"conversation_id"`
	SenderID         string       `json:"sender_id"`
	SenderEntityType string       `json:"sender_entity_type"`
	Content          string       `json:"content"`
	MessageType      string       `json:"message_type"`
	Attachments      []Attachment `json:"attachments"`
	IsStoryReply     bool         `json:"is_story_reply"`
	StoryID          *string      `json:"story_id"`
	StoryURL         *string      `json:"story_url"`
	IsPostShare      bool         `json:"is_post_share"`
	PostID           *string      `json:"post_id"`
	PostSummary      *string      `json:"post_summary"`
	PostImage        *string      `json:"post_image"`
	PostAuthorName   *string      `json:"post_author_name"`
	PostAuthorAvatar *string      `json:"post_author_avatar"`
	PostTitle        *string      `json:"post_title"`
	PostContent      *string      `json:"post_content"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	Revision         int          `json:"__v"`
}
