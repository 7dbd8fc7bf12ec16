package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

type savedKey struct {
	userID        string
	opportunityID string
}

// SavedStore keeps user bookmarks in memory.
type SavedStore struct {
	mu    sync.RWMutex
	saved map[savedKey]opportunity.SavedOpportunity
}

// NewSavedStore constructs a SavedStore.
func NewSavedStore() *SavedStore {
	return &SavedStore{saved: make(map[savedKey]opportunity.SavedOpportunity)}
}

// Save stores the bookmark, or refreshes the note of an existing one.
func (s *SavedStore) Save(_ context.Context, saved opportunity.SavedOpportunity) (opportunity.SavedOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := savedKey{userID: saved.UserID, opportunityID: saved.OpportunityID}
	if existing, ok := s.saved[key]; ok {
		existing.Note = saved.Note
		s.saved[key] = existing
		return existing, nil
	}
	s.saved[key] = saved
	return saved, nil
}

// Delete removes the bookmark. The opportunity itself is untouched.
func (s *SavedStore) Delete(_ context.Context, userID, opportunityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := savedKey{userID: userID, opportunityID: opportunityID}
	if _, ok := s.saved[key]; !ok {
		return opportunity.ErrNotFound
	}
	delete(s.saved, key)
	return nil
}

// ListSaved returns a user's bookmarks, most recent first.
func (s *SavedStore) ListSaved(_ context.Context, userID string) ([]opportunity.SavedOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]opportunity.SavedOpportunity, 0)
	for key, saved := range s.saved {
		if key.userID == userID {
			out = append(out, saved)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].OpportunityID < out[j].OpportunityID
	})
	return out, nil
}
