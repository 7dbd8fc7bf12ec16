package aggregate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// UpsertAction says what happened to one record.
type UpsertAction string

// Upsert actions.
const (
	ActionInserted UpsertAction = "inserted"
	ActionUpdated  UpsertAction = "updated"
)

// UpsertStats counts the outcome of a batch.
type UpsertStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// Upserter deduplicates fetched records against the store by
// (source, external id). Records are handled one at a time so a failure
// never affects the rest of the batch.
type Upserter struct {
	store  opportunity.Store
	clock  opportunity.Clock
	ids    opportunity.IDGenerator
	logger *zap.Logger
}

// NewUpserter builds an Upserter.
func NewUpserter(store opportunity.Store, clock opportunity.Clock, ids opportunity.IDGenerator, logger *zap.Logger) *Upserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Upserter{store: store, clock: clock, ids: ids, logger: logger.Named("upserter")}
}

// UpsertAll folds records into the store and reports the counts.
func (u *Upserter) UpsertAll(ctx context.Context, records []opportunity.Opportunity) UpsertStats {
	var stats UpsertStats
	for _, rec := range records {
		action, _, err := u.Upsert(ctx, rec)
		if err != nil {
			stats.Failed++
			u.logger.Warn("upsert failed",
				zap.String("source", rec.Source),
				zap.String("external_id", rec.ExternalID),
				zap.Error(err),
			)
			continue
		}
		switch action {
		case ActionInserted:
			stats.Inserted++
		case ActionUpdated:
			stats.Updated++
		}
	}
	return stats
}

// Upsert updates the stored record with the same key or inserts a new
// one. The last fetched version wins every field except id and
// created_at. Records without an external id are always inserted.
func (u *Upserter) Upsert(ctx context.Context, rec opportunity.Opportunity) (UpsertAction, opportunity.Opportunity, error) {
	now := u.clock.Now()
	rec = rec.Normalized()
	key := rec.Key()

	if key.Known() {
		existing, err := u.store.FindByKey(ctx, key)
		switch {
		case err == nil:
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			rec.UpdatedAt = now
			updated, err := u.store.Update(ctx, rec)
			if err != nil {
				return "", opportunity.Opportunity{}, fmt.Errorf("update %s/%s: %w", key.Source, key.ExternalID, err)
			}
			return ActionUpdated, updated, nil
		case errors.Is(err, opportunity.ErrNotFound):
		default:
			return "", opportunity.Opportunity{}, fmt.Errorf("lookup %s/%s: %w", key.Source, key.ExternalID, err)
		}
	}

	id, err := u.ids.NewID()
	if err != nil {
		return "", opportunity.Opportunity{}, fmt.Errorf("generate id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	inserted, err := u.store.Insert(ctx, rec)
	if err != nil {
		return "", opportunity.Opportunity{}, fmt.Errorf("insert %s/%s: %w", key.Source, key.ExternalID, err)
	}
	return ActionInserted, inserted, nil
}
