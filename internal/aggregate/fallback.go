package aggregate

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/metrics"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// SearchResult is the answer of the first candidate that produced records.
type SearchResult struct {
	Source  string                    `json:"source"`
	Records []opportunity.Opportunity `json:"opportunities"`
}

// Searcher answers job searches.
type Searcher interface {
	Search(ctx context.Context, hints source.Hints) (SearchResult, error)
}

// FallbackChain tries its candidates in a fixed order and stops at the
// first one that returns at least one record.
type FallbackChain struct {
	candidates []source.Adapter
	logger     *zap.Logger
}

// NewFallbackChain builds a chain. The order of candidates never changes.
func NewFallbackChain(logger *zap.Logger, candidates ...source.Adapter) *FallbackChain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackChain{candidates: slices.Clone(candidates), logger: logger.Named("fallback")}
}

// Candidates returns the provider names in try order.
func (f *FallbackChain) Candidates() []string {
	out := make([]string, 0, len(f.candidates))
	for _, c := range f.candidates {
		out = append(out, c.Name())
	}
	return out
}

// Search returns the first non-empty success. When every candidate fails
// or returns nothing, a single *opportunity.AllProvidersExhaustedError
// carrying each cause is returned.
func (f *FallbackChain) Search(ctx context.Context, hints source.Hints) (SearchResult, error) {
	attempts := make([]opportunity.Attempt, 0, len(f.candidates))
	for _, candidate := range f.candidates {
		name := candidate.Name()
		records, err := f.try(ctx, candidate, hints)
		if err == nil && len(records) == 0 {
			err = fmt.Errorf("%s: %w", name, opportunity.ErrNoResults)
		}
		if err != nil {
			f.logger.Info("candidate skipped", zap.String("source", name), zap.Error(err))
			attempts = append(attempts, opportunity.Attempt{Source: name, Err: err})
			continue
		}
		for i := range records {
			if records[i].Source == "" {
				records[i].Source = name
			}
		}
		metrics.ObserveFallbackResolution(name)
		return SearchResult{Source: name, Records: records}, nil
	}
	metrics.ObserveFallbackResolution("exhausted")
	return SearchResult{}, &opportunity.AllProvidersExhaustedError{Attempts: attempts}
}

func (f *FallbackChain) try(ctx context.Context, candidate source.Adapter, hints source.Hints) (records []opportunity.Opportunity, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%s: %w: panic: %v", candidate.Name(), opportunity.ErrProviderUnavailable, r)
		}
	}()
	return candidate.Fetch(ctx, hints)
}
