package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nightchat/internal/errs"
	"nightchat/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageApiService is the REST client for the messaging endpoints:
// conversation list, message history, send, mark-read and public profile
// lookup. Every response uses the shared {success, message, errors, data}
// envelope. Timeouts live in the underlying http.Client.
type MessageApiService struct {
	baseUrl string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

func NewMessageApiService(baseUrl, token string, timeout time.Duration, logger zerolog.Logger) *MessageApiService {
	return &MessageApiService{
		baseUrl: baseUrl,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "message_api").Logger(),
	}
}

func (mas *MessageApiService) makeRequest(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	requestUrl := mas.baseUrl + path
	if len(query) > 0 {
		requestUrl += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestUrl, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+mas.token)
	request.Header.Set("X-Request-ID", uuid.NewString())

	response, err := mas.client.Do(request)
	if err != nil {
		mas.logger.Warn().Err(err).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %v", errs.ErrRequestFailed, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	var envelope models.Response
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidResponseBody, err)
	}

	if response.StatusCode >= http.StatusBadRequest || !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = response.Status
		}
		mas.logger.Warn().Str("path", path).Int("status", response.StatusCode).Str("message", message).Msg("request rejected")
		return fmt.Errorf("%w: %s", errs.ErrRequestFailed, message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrInvalidResponseBody, err)
		}
	}
	return nil
}

// GetConversations returns every conversation of userId. The detail screen
// locates its conversation in this list; there is no single-conversation
// endpoint.
func (mas *MessageApiService) GetConversations(ctx context.Context, userId string) ([]models.Conversation, error) {
	query := url.Values{}
	query.Set("userId", userId)

	var list models.ConversationListResponse
	if err := mas.makeRequest(ctx, http.MethodGet, "/api/v1/conversations", query, nil, &list); err != nil {
		return nil, err
	}
	return list.Conversations, nil
}

// GetMessages fetches one history page. An empty before cursor returns the
// newest window; otherwise the page strictly precedes the before message id.
func (mas *MessageApiService) GetMessages(ctx context.Context, conversationId, before string, limit int) ([]models.Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if before != "" {
		query.Set("before", before)
	}

	var list models.MessageListResponse
	path := "/api/v1/conversations/" + conversationId + "/messages"
	if err := mas.makeRequest(ctx, http.MethodGet, path, query, nil, &list); err != nil {
		return nil, err
	}
	return list.Messages, nil
}

// SendMessage creates a message and returns the server-confirmed record.
func (mas *MessageApiService) SendMessage(ctx context.Context, conversationId, content, messageType string) (*models.Message, error) {
	body := models.SendMessageRequestBody{
		Content:     content,
		MessageType: messageType,
	}

	var message models.Message
	path := "/api/v1/conversations/" + conversationId + "/messages"
	if err := mas.makeRequest(ctx, http.MethodPost, path, nil, body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkConversationRead is fire-and-forget from the core's perspective; the
// caller swallows errors after logging.
func (mas *MessageApiService) MarkConversationRead(ctx context.Context, conversationId, userId string) error {
	body := models.MarkReadRequestBody{UserID: userId}
	path := "/api/v1/conversations/" + conversationId + "/read"
	return mas.makeRequest(ctx, http.MethodPost, path, nil, body, nil)
}

// GetPublicProfile resolves a participant's display name and avatar for the
// conversation header.
func (mas *MessageApiService) GetPublicProfile(ctx context.Context, entityId string) (*models.PublicProfile, error) {
	var profile models.PublicProfile
	if err := mas.makeRequest(ctx, http.MethodGet, "/api/v1/profiles/"+entityId, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
