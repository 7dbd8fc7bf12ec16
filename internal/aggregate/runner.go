package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/metrics"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

var (
	// ErrPassInProgress is returned when a pass is requested while another
	// one is still running in this process.
	ErrPassInProgress = errors.New("aggregation pass already in progress")
	// ErrAllSourcesFailed marks a pass in which no adapter succeeded.
	ErrAllSourcesFailed = errors.New("every source failed")
)

// EventPassCompleted is the event type published after each pass.
const EventPassCompleted = "aggregation.completed"

// BlobStore persists pass snapshots.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Publisher emits pass events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// SourceReport summarizes one adapter inside a pass.
type SourceReport struct {
	Source     string `json:"source"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// PassReport describes a finished aggregation pass.
type PassReport struct {
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Sources     []SourceReport `json:"sources"`
	Fetched     int            `json:"fetched"`
	UpsertStats                `json:"upserts"`
	SnapshotURI string         `json:"snapshot_uri,omitempty"`
}

// Pass statuses.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Event is the payload published after each pass.
type Event struct {
	Type   string     `json:"type"`
	Report PassReport `json:"report"`
}

// EventType names the event for message attributes.
func (e Event) EventType() string { return e.Type }

// RunnerConfig controls snapshot and event destinations.
type RunnerConfig struct {
	SnapshotPrefix string
	Topic          string
}

// Runner executes full aggregation passes. At most one pass runs at a
// time per Runner.
type Runner struct {
	coordinator *Coordinator
	upserter    *Upserter
	blobs       BlobStore
	publisher   Publisher
	clock       opportunity.Clock
	cfg         RunnerConfig
	logger      *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	mu   sync.RWMutex
	last *PassReport
}

// NewRunner builds a Runner. blobs and publisher are optional.
func NewRunner(
	coordinator *Coordinator,
	upserter *Upserter,
	blobs BlobStore,
	publisher Publisher,
	clock opportunity.Clock,
	cfg RunnerConfig,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SnapshotPrefix == "" {
		cfg.SnapshotPrefix = "passes"
	}
	return &Runner{
		coordinator: coordinator,
		upserter:    upserter,
		blobs:       blobs,
		publisher:   publisher,
		clock:       clock,
		cfg:         cfg,
		logger:      logger.Named("runner"),
	}
}

// Run executes one pass and blocks until it finishes. It returns
// ErrPassInProgress without doing anything when a pass is already running.
func (r *Runner) Run(ctx context.Context) (PassReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return PassReport{}, ErrPassInProgress
	}
	defer r.running.Store(false)
	return r.pass(ctx)
}

// Trigger starts a pass in the background. It reports false when a pass
// is already running.
func (r *Runner) Trigger(ctx context.Context) bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Store(false)
		if _, err := r.pass(ctx); err != nil {
			r.logger.Error("triggered pass failed", zap.Error(err))
		}
	}()
	return true
}

// Running reports whether a pass is in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Wait blocks until passes started by Trigger have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// LastReport returns the most recent finished pass.
func (r *Runner) LastReport() (PassReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return PassReport{}, false
	}
	return *r.last, true
}

func (r *Runner) pass(ctx context.Context) (report PassReport, err error) {
	report.StartedAt = r.clock.Now()
	r.logger.Info("aggregation pass started")

	defer func() {
		if report.FinishedAt.IsZero() {
			report.FinishedAt = r.clock.Now()
		}
		metrics.ObservePass(report.Status, report.FinishedAt.Sub(report.StartedAt))
		r.mu.Lock()
		last := report
		r.last = &last
		r.mu.Unlock()
	}()

	result := r.coordinator.Collect(ctx, source.Hints{})
	report.Fetched = len(result.Records)
	for _, o := range result.Outcomes {
		sr := SourceReport{Source: o.Source, Records: o.Records, DurationMS: o.Duration.Milliseconds()}
		if o.Err != nil {
			sr.Error = o.Err.Error()
		}
		report.Sources = append(report.Sources, sr)
	}

	if result.AllFailed() {
		report.Status = StatusFailed
		report.FinishedAt = r.clock.Now()
		r.publish(ctx, report)
		return report, fmt.Errorf("aggregation pass: %w", ErrAllSourcesFailed)
	}

	report.UpsertStats = r.upserter.UpsertAll(ctx, result.Records)
	metrics.ObserveUpserts(report.Inserted, report.Updated, report.Failed)

	report.Status = StatusOK
	if len(result.Failed()) > 0 || report.UpsertStats.Failed > 0 {
		report.Status = StatusPartial
	}
	report.SnapshotURI = r.archive(ctx, report.StartedAt, result.Records)
	report.FinishedAt = r.clock.Now()
	r.publish(ctx, report)

	r.logger.Info("aggregation pass finished",
		zap.String("status", report.Status),
		zap.Int("fetched", report.Fetched),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.UpsertStats.Failed),
		zap.Strings("failed_sources", result.Failed()),
	)
	return report, nil
}

func (r *Runner) archive(ctx context.Context, startedAt time.Time, records []opportunity.Opportunity) string {
	if r.blobs == nil {
		return ""
	}
	payload, err := json.Marshal(records)
	if err != nil {
		r.logger.Warn("encode snapshot failed", zap.Error(err))
		return ""
	}
	name := path.Join(r.cfg.SnapshotPrefix, startedAt.UTC().Format("20060102T150405Z")+".json")
	uri, err := r.blobs.PutObject(ctx, name, "application/json", bytes.NewReader(payload))
	if err != nil {
		r.logger.Warn("archive snapshot failed", zap.String("path", name), zap.Error(err))
		return ""
	}
	return uri
}

func (r *Runner) publish(ctx context.Context, report PassReport) {
	if r.publisher == nil {
		return
	}
	id, err := r.publisher.Publish(ctx, r.cfg.Topic, Event{Type: EventPassCompleted, Report: report})
	if err != nil {
		r.logger.Warn("publish pass event failed", zap.Error(err))
		return
	}
	r.logger.Debug("published pass event", zap.String("message_id", id))
}
