package source

import (
	"slices"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// Fallback substitutes a built-in catalog when a live provider fails.
// It is off unless Enabled is set, so real failures are never masked by
// default.
type Fallback struct {
	Enabled bool
	Catalog func() []opportunity.Opportunity
}

// Recover returns the catalog in place of err when the fallback is on.
// Catalog records are stamped with source and tagged static-fallback.
// With the fallback off it returns (nil, err) unchanged.
func (f Fallback) Recover(source string, err error, logger *zap.Logger) ([]opportunity.Opportunity, error) {
	if !f.Enabled || f.Catalog == nil {
		return nil, err
	}
	records := f.Catalog()
	logger.Warn("provider unavailable, serving static catalog",
		zap.String("source", source),
		zap.Int("records", len(records)),
		zap.Error(err),
	)
	return MarkStatic(source, records), nil
}

// MarkStatic stamps records as coming from source's built-in catalog.
func MarkStatic(source string, records []opportunity.Opportunity) []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, 0, len(records))
	for _, rec := range records {
		rec.Source = source
		if !rec.HasTag(opportunity.TagStaticFallback) {
			rec.Tags = append(slices.Clone(rec.Tags), opportunity.TagStaticFallback)
		}
		out = append(out, rec)
	}
	return out
}
