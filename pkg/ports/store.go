package ports

import (
	"context"

	"github.com/airband-io/airband/pkg/domain"
)

// SessionStore defines the interface for persisting session state.
// This allows for durable training sessions, enabling "stop & resume".
type SessionStore interface {
	// Save persists the session under its id.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session by id.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of stored sessions.
	List(ctx context.Context) ([]string, error)
}
