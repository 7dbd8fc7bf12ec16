// Package aggregate fans provider calls out, resolves job searches through
// an ordered fallback chain and folds fetched records into the store.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/opportunity-discovery/internal/metrics"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

const (
	defaultSourceTimeout = 15 * time.Second
	defaultMaxParallel   = 8
)

// Selector picks the adapters serving a category.
type Selector interface {
	Select(category opportunity.Category) []source.Adapter
}

// Outcome is one adapter's contribution to a fan-out.
type Outcome struct {
	Source   string        `json:"source"`
	Records  int           `json:"records"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the adapter call failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Result is the merged fan-out output.
type Result struct {
	Records  []opportunity.Opportunity
	Outcomes []Outcome
}

// Failed lists the sources whose call failed.
func (r Result) Failed() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o.Source)
		}
	}
	return out
}

// AllFailed reports whether every selected adapter failed. An empty
// selection is not a failure.
func (r Result) AllFailed() bool {
	return len(r.Outcomes) > 0 && len(r.Failed()) == len(r.Outcomes)
}

// Coordinator runs the selected adapters concurrently and waits for all
// of them. A failing or panicking adapter never affects the others.
type Coordinator struct {
	selector      Selector
	sourceTimeout time.Duration
	maxParallel   int
	logger        *zap.Logger
}

// NewCoordinator builds a Coordinator. A non-positive timeout uses 15s.
func NewCoordinator(selector Selector, sourceTimeout time.Duration, logger *zap.Logger) *Coordinator {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		selector:      selector,
		sourceTimeout: sourceTimeout,
		maxParallel:   defaultMaxParallel,
		logger:        logger.Named("coordinator"),
	}
}

// SetMaxParallel bounds how many adapters are fetched at once. Values
// below one keep the default of 8.
func (c *Coordinator) SetMaxParallel(n int) {
	if n < 1 {
		n = defaultMaxParallel
	}
	c.maxParallel = n
}

// Collect fetches from every adapter selected for hints.Category and
// merges the successful results in selection order.
func (c *Coordinator) Collect(ctx context.Context, hints source.Hints) Result {
	adapters := c.selector.Select(hints.Category)
	outcomes := make([]Outcome, len(adapters))
	batches := make([][]opportunity.Opportunity, len(adapters))

	var g errgroup.Group
	g.SetLimit(c.maxParallel)
	for i, adapter := range adapters {
		g.Go(func() error {
			batches[i], outcomes[i] = c.fetchOne(ctx, adapter, hints)
			return nil
		})
	}
	_ = g.Wait()

	var merged []opportunity.Opportunity
	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	c.logger.Info("fan-out complete",
		zap.String("category", string(hints.Category)),
		zap.Int("sources", len(adapters)),
		zap.Int("records", len(merged)),
		zap.Strings("failed", Result{Outcomes: outcomes}.Failed()),
	)
	return Result{Records: merged, Outcomes: outcomes}
}

func (c *Coordinator) fetchOne(
	ctx context.Context,
	adapter source.Adapter,
	hints source.Hints,
) (records []opportunity.Opportunity, outcome Outcome) {
	name := adapter.Name()
	start := time.Now()
	outcome.Source = name

	defer func() {
		if r := recover(); r != nil {
			records = nil
			outcome.Err = fmt.Errorf("%s: %w: panic: %v", name, opportunity.ErrProviderUnavailable, r)
		}
		outcome.Duration = time.Since(start)
		outcome.Records = len(records)
		c.observe(outcome, records)
	}()

	callCtx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
	defer cancel()

	fetched, err := adapter.Fetch(callCtx, hints)
	if err != nil {
		outcome.Err = err
		return nil, outcome
	}
	for i := range fetched {
		if fetched[i].Source == "" {
			fetched[i].Source = name
		}
	}
	return fetched, outcome
}

func (c *Coordinator) observe(outcome Outcome, records []opportunity.Opportunity) {
	status := metrics.OutcomeSuccess
	switch {
	case outcome.Err != nil:
		status = metrics.OutcomeError
		c.logger.Warn("source fetch failed",
			zap.String("source", outcome.Source),
			zap.Duration("duration", outcome.Duration),
			zap.Error(outcome.Err),
		)
	case len(records) == 0:
		status = metrics.OutcomeEmpty
	case records[0].HasTag(opportunity.TagStaticFallback):
		status = metrics.OutcomeFallback
	}
	metrics.ObserveFetch(outcome.Source, status, outcome.Records, outcome.Duration)
}
