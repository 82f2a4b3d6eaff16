package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"nightchat/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// CachedMessage is the on-device row for one message. Queryable columns are
// denormalized; Payload keeps the full wire document so restoring a message
// is lossless.
type CachedMessage struct {
	ID             string    `gorm:"primaryKey"`
	ConversationID string    `gorm:"index:idx_conversation_created,priority:1"`
	SenderID       string
	MessageType    string
	Content        string
	CreatedAt      time.Time `gorm:"index:idx_conversation_created,priority:2"`
	Payload        []byte
}

// MessageCache is the device-local history cache. A reopened conversation
// renders from here immediately while the network window loads.
type MessageCache struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func OpenMessageCache(path string, logger zerolog.Logger) (*MessageCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open message cache: %w", err)
	}
	if err := db.AutoMigrate(&CachedMessage{}); err != nil {
		return nil, fmt.Errorf("migrate message cache: %w", err)
	}
	return &MessageCache{
		db:     db,
		logger: logger.With().Str("component", "message_cache").Logger(),
	}, nil
}

// SaveMessages upserts messages by id. Rows already present are refreshed,
// never duplicated.
func (mc *MessageCache) SaveMessages(messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	rows := make([]CachedMessage, 0, len(messages))
	for i := range messages {
		payload, err := json.Marshal(&messages[i])
		if err != nil {
			return fmt.Errorf("encode cached message: %w", err)
		}
		rows = append(rows, CachedMessage{
			ID:             messages[i].ID,
			ConversationID: messages[i].ConversationID,
			SenderID:       messages[i].SenderID,
			MessageType:    messages[i].MessageType,
			Content:        messages[i].Content,
			CreatedAt:      messages[i].CreatedAt,
			Payload:        payload,
		})
	}

	return mc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

// RecentMessages returns the newest limit messages of a conversation in
// chronological ascending order.
func (mc *MessageCache) RecentMessages(conversationId string, limit int) ([]models.Message, error) {
	var rows []CachedMessage
	err := mc.db.
		Where("conversation_id = ?", conversationId).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read message cache: %w", err)
	}

	messages := make([]models.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		var message models.Message
		if err := json.Unmarshal(rows[i].Payload, &message); err != nil {
			mc.logger.Warn().Err(err).Str("message_id", rows[i].ID).Msg("skipping corrupt cache row")
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// ClearConversation drops every cached row of one conversation.
func (mc *MessageCache) ClearConversation(conversationId string) error {
	return mc.db.Where("conversation_id = ?", conversationId).Delete(&CachedMessage{}).Error
}

func (mc *MessageCache) Close() error {
	db, err := mc.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
