package postgres

import (
	"context"
	"fmt"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// SavedStore persists bookmarks in the saved_opportunities table.
type SavedStore struct {
	pool Pool
}

// NewSavedStore constructs a store over pool.
func NewSavedStore(pool Pool) (*SavedStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SavedStore{pool: pool}, nil
}

// Save inserts the bookmark or refreshes the note of an existing one.
func (s *SavedStore) Save(ctx context.Context, saved opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error) {
	query := `
INSERT INTO saved_opportunities (id, user_id, opportunity_id, note, saved_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, opportunity_id) DO UPDATE SET note = EXCLUDED.note
RETURNING id, user_id, opportunity_id, note, saved_at`
	var out opportunity.SavedOpportunity
	err := s.pool.QueryRow(ctx, query, saved.ID, saved.UserID, saved.OpportunityID, saved.Note, saved.SavedAt).
		Scan(&out.ID, &out.UserID, &out.OpportunityID, &out.Note, &out.SavedAt)
	if err != nil {
		return opportunity.SavedOpportunity{}, fmt.Errorf("save opportunity: %w", err)
	}
	return out, nil
}

// Delete removes the bookmark only.
func (s *SavedStore) Delete(ctx context.Context, userID, opportunityID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_opportunities WHERE user_id = $1 AND opportunity_id = $2`,
		userID, opportunityID)
	if err != nil {
		return fmt.Errorf("delete saved opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return opportunity.ErrNotFound
	}
	return nil
}

// ListSaved returns a user's bookmarks, most recent first.
func (s *SavedStore) ListSaved(ctx context.Context, userID string) ([]opportunity.SavedOpportunity, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, opportunity_id, note, saved_at
FROM saved_opportunities
WHERE user_id = $1
ORDER BY saved_at DESC, opportunity_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved opportunities: %w", err)
	}
	defer rows.Close()

	out := make([]opportunity.SavedOpportunity, 0)
	for rows.Next() {
		var s opportunity.SavedOpportunity
		if err := rows.Scan(&s.ID, &s.UserID, &s.OpportunityID, &s.Note, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("scan saved opportunity: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved opportunities: %w", err)
	}
	return out, nil
}
