package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hermes/internal/domain/session"
	"hermes/pkg/errors"
)

// Compile-time check
var _ session.Repository = (*SessionRepository)(nil)

// SessionRepository implements session.Repository using Redis
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Get retrieves a session by chat ID
func (r *SessionRepository) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	data, err := r.client.Get(ctx, r.getKey(chatID)).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "session not found for chat_id=%d", chatID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session from redis: chat_id=%d", chatID)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session: chat_id=%d", chatID)
	}

	return &s, nil
}

// Save stores a session with the dialog TTL
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session: chat_id=%d", s.ChatID)
	}

	if err := r.client.Set(ctx, r.getKey(s.ChatID), data, session.TTL).Err(); err != nil {
		return errors.Wrapf(err, "failed to save session to redis: chat_id=%d", s.ChatID)
	}

	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, r.getKey(chatID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete session from redis: chat_id=%d", chatID)
	}
	return nil
}

func (r *SessionRepository) getKey(chatID int64) string {
	return fmt.Sprintf("analysis_dialog:%d", chatID)
}
