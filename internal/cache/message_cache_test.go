package cache

import (
	"path/filepath"
	"testing"
	"time"

	"nightchat/internal/enums"
	"nightchat/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *MessageCache {
	mc, err := OpenMessageCache(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mc.Close()
	})
	return mc
}

func cachedMessage(id, conversationId string, createdAt time.Time) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: conversationId,
		SenderID:       "u1",
		Content:        "cached " + id,
		MessageType:    enums.MESSAGE_TYPE_TEXT,
		CreatedAt:      createdAt,
	}
}

func TestSaveAndReadBack(t *testing.T) {
	mc := openTestCache(t)
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	require.NoError(t, mc.SaveMessages([]models.Message{
		cachedMessage("m2", "c1", base.Add(time.Minute)),
		cachedMessage("m1", "c1", base),
		cachedMessage("x1", "c2", base),
	}))

	messages, err := mc.RecentMessages("c1", 10)
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
	assert.Equal(t, "cached m1", messages[0].Content)
}

func TestSaveIsUpsertById(t *testing.T) {
	mc := openTestCache(t)
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	message := cachedMessage("m1", "c1", base)
	require.NoError(t, mc.SaveMessages([]models.Message{message}))

	message.Content = "edited"
	require.NoError(t, mc.SaveMessages([]models.Message{message}))

	messages, err := mc.RecentMessages("c1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "edited", messages[0].Content)
}

func TestRecentMessagesKeepsNewestWindow(t *testing.T) {
	mc := openTestCache(t)
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	history := make([]models.Message, 0, 20)
	for i := 0; i < 20; i++ {
		history = append(history, cachedMessage(
			string(rune('a'+i))+"-msg", "c1", base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, mc.SaveMessages(history))

	messages, err := mc.RecentMessages("c1", 5)
	require.NoError(t, err)

	require.Len(t, messages, 5)
	// Newest five, ascending.
	assert.Equal(t, "p-msg", messages[0].ID)
	assert.Equal(t, "t-msg", messages[4].ID)
}

func TestClearConversation(t *testing.T) {
	mc := openTestCache(t)
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	require.NoError(t, mc.SaveMessages([]models.Message{
		cachedMessage("m1", "c1", base),
		cachedMessage("x1", "c2", base),
	}))
	require.NoError(t, mc.ClearConversation("c1"))

	gone, err := mc.RecentMessages("c1", 10)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := mc.RecentMessages("c2", 10)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestSaveNothingIsNoop(t *testing.T) {
	mc := openTestCache(t)
	assert.NoError(t, mc.SaveMessages(nil))
}
