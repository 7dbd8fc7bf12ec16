package aggregate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%d", s.n.Add(1)), nil
}

type fakeAdapter struct {
	name       string
	categories []opportunity.Category
	records    []opportunity.Opportunity
	err        error
	panicMsg   string
	calls      atomic.Int32
	block      chan struct{}
}

func (f *fakeAdapter) Name() string                       { return f.name }
func (f *fakeAdapter) Categories() []opportunity.Category { return f.categories }

func (f *fakeAdapter) Fetch(ctx context.Context, _ source.Hints) ([]opportunity.Opportunity, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]opportunity.Opportunity, len(f.records))
	copy(out, f.records)
	return out, nil
}

type staticSelector []source.Adapter

func (s staticSelector) Select(opportunity.Category) []source.Adapter { return s }

func rec(source, externalID, title string) opportunity.Opportunity {
	return opportunity.Opportunity{Source: source, ExternalID: externalID, Title: title}
}

func unavailable(name string) error {
	return fmt.Errorf("%s: %w", name, opportunity.ErrProviderUnavailable)
}
