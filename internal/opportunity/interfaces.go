package opportunity

import (
	"context"
	"time"
)

// Store persists canonical opportunities. Writes are atomic per record.
type Store interface {
	// FindByKey returns ErrNotFound when no record carries key, including
	// when the key is unknown.
	FindByKey(ctx context.Context, key Key) (Opportunity, error)
	Get(ctx context.Context, id string) (Opportunity, error)
	Insert(ctx context.Context, opp Opportunity) (Opportunity, error)
	Update(ctx context.Context, opp Opportunity) (Opportunity, error)
	Count(ctx context.Context) (int, error)
	Query(ctx context.Context, filter Filter) (Page, error)
}

// SavedStore persists user bookmarks.
type SavedStore interface {
	// Save creates the (user, opportunity) pair or refreshes its note.
	Save(ctx context.Context, saved SavedOpportunity) (SavedOpportunity, error)
	Delete(ctx context.Context, userID, opportunityID string) error
	ListSaved(ctx context.Context, userID string) ([]SavedOpportunity, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
