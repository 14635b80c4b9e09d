package session

import "context"

// Repository stores per-chat dialog sessions
type Repository interface {
	// Get returns the session for a chat; errors.ErrNotFound when none exists
	Get(ctx context.Context, chatID int64) (*Session, error)

	// Save stores a session, refreshing its TTL
	Save(ctx context.Context, session *Session) error

	// Delete removes a session
	Delete(ctx context.Context, chatID int64) error
}
