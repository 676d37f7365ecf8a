package ports

import (
	"context"

	"github.com/aretw0/shopkeep/pkg/domain"
)

// SessionStore defines the interface for persisting sessions.
// Implementations hand out independent copies: mutating a loaded session
// never affects the stored one until it is saved again.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, s *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
