// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/JakeFAU/opportunity-discovery/internal/filter"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// OpportunityStore keeps opportunities in maps keyed by id and by
// (source, external id).
type OpportunityStore struct {
	mu     sync.RWMutex
	byID   map[string]opportunity.Opportunity
	byKey  map[opportunity.Key]string
	order  []string
	engine *filter.Engine
}

// NewOpportunityStore constructs an OpportunityStore. A nil engine uses a
// clock-seeded one.
func NewOpportunityStore(engine *filter.Engine) *OpportunityStore {
	if engine == nil {
		engine = filter.New(nil)
	}
	return &OpportunityStore{
		byID:   make(map[string]opportunity.Opportunity),
		byKey:  make(map[opportunity.Key]string),
		engine: engine,
	}
}

// FindByKey returns the record stored under key.
func (s *OpportunityStore) FindByKey(_ context.Context, key opportunity.Key) (opportunity.Opportunity, error) {
	if !key.Known() {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

// Get fetches a record by id.
func (s *OpportunityStore) Get(_ context.Context, id string) (opportunity.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opp, ok := s.byID[id]
	if !ok {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return clone(opp), nil
}

// Insert stores a new record. The id and any known key must be unused.
func (s *OpportunityStore) Insert(_ context.Context, opp opportunity.Opportunity) (opportunity.Opportunity, error) {
	if opp.ID == "" {
		return opportunity.Opportunity{}, fmt.Errorf("insert: id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[opp.ID]; exists {
		return opportunity.Opportunity{}, fmt.Errorf("insert: id %s already exists", opp.ID)
	}
	key := opp.Key()
	if key.Known() {
		if _, exists := s.byKey[key]; exists {
			return opportunity.Opportunity{}, fmt.Errorf("insert: key %s/%s already exists", key.Source, key.ExternalID)
		}
		s.byKey[key] = opp.ID
	}
	opp = clone(opp)
	s.byID[opp.ID] = opp
	s.order = append(s.order, opp.ID)
	return clone(opp), nil
}

// Update replaces the record with the same id.
func (s *OpportunityStore) Update(_ context.Context, opp opportunity.Opportunity) (opportunity.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[opp.ID]
	if !ok {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	if prevKey := prev.Key(); prevKey != opp.Key() {
		delete(s.byKey, prevKey)
		if opp.Key().Known() {
			s.byKey[opp.Key()] = opp.ID
		}
	}
	opp = clone(opp)
	s.byID[opp.ID] = opp
	return clone(opp), nil
}

// Count returns the number of stored records.
func (s *OpportunityStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Query filters stored records, newest posting first unless shuffled.
func (s *OpportunityStore) Query(_ context.Context, f opportunity.Filter) (opportunity.Page, error) {
	s.mu.RLock()
	all := make([]opportunity.Opportunity, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, clone(s.byID[id]))
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return newer(all[i], all[j])
	})
	return s.engine.Apply(all, f), nil
}

func newer(a, b opportunity.Opportunity) bool {
	switch {
	case a.PostedAt != nil && b.PostedAt != nil && !a.PostedAt.Equal(*b.PostedAt):
		return a.PostedAt.After(*b.PostedAt)
	case a.PostedAt != nil && b.PostedAt == nil:
		return true
	case a.PostedAt == nil && b.PostedAt != nil:
		return false
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

func clone(o opportunity.Opportunity) opportunity.Opportunity {
	o.Requirements = slices.Clone(o.Requirements)
	o.Skills = slices.Clone(o.Skills)
	o.Tags = slices.Clone(o.Tags)
	return o
}
