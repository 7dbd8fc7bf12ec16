// Package github adapts community-maintained internship listings published
// as a static JSON file on GitHub.
package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "github"

const (
	defaultListingsURL = "https://raw.githubusercontent.com/SimplifyJobs/Summer2025-Internships/dev/.github/scripts/listings.json"
	defaultMaxRecords  = 200
)

// Config holds the listings location and output cap.
type Config struct {
	ListingsURL string
	MaxRecords  int
	Fallback    source.Fallback
}

// Adapter reads the listings file.
type Adapter struct {
	cfg    Config
	client *source.Client
	logger *zap.Logger
}

// New builds an Adapter.
func New(cfg Config, client *source.Client, logger *zap.Logger) *Adapter {
	if cfg.ListingsURL == "" {
		cfg.ListingsURL = defaultListingsURL
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = defaultMaxRecords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{cfg: cfg, client: client, logger: logger.Named(Name)}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryInternship}
}

type listing struct {
	ID          source.FlexibleID `json:"id"`
	CompanyName string            `json:"company_name"`
	Title       string            `json:"title"`
	Locations   []string          `json:"locations"`
	URL         string            `json:"url"`
	DatePosted  int64             `json:"date_posted"`
	Active      bool              `json:"active"`
	IsVisible   *bool             `json:"is_visible"`
	Terms       []string          `json:"terms"`
	Sponsorship string            `json:"sponsorship"`
	Category    string            `json:"category"`
}

func (l listing) visible() bool {
	return l.Active && (l.IsVisible == nil || *l.IsVisible)
}

// Fetch implements source.Adapter. Only active, visible listings are
// returned, newest first, capped at MaxRecords.
func (a *Adapter) Fetch(ctx context.Context, _ source.Hints) ([]opportunity.Opportunity, error) {
	records, err := a.fetch(ctx)
	if err != nil {
		return a.cfg.Fallback.Recover(Name, err, a.logger)
	}
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context) ([]opportunity.Opportunity, error) {
	var listings []listing
	if err := a.client.GetJSON(ctx, a.cfg.ListingsURL, nil, &listings); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	kept := listings[:0]
	for _, l := range listings {
		if l.visible() && strings.TrimSpace(l.Title) != "" {
			kept = append(kept, l)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].DatePosted > kept[j].DatePosted })
	if len(kept) > a.cfg.MaxRecords {
		kept = kept[:a.cfg.MaxRecords]
	}

	out := make([]opportunity.Opportunity, 0, len(kept))
	for _, l := range kept {
		out = append(out, l.toOpportunity())
	}
	a.logger.Debug("fetched listings", zap.Int("total", len(listings)), zap.Int("kept", len(out)))
	return out, nil
}

func (l listing) toOpportunity() opportunity.Opportunity {
	locations := source.CleanList(l.Locations)
	location := strings.Join(locations, "; ")
	remote := false
	for _, loc := range locations {
		if source.InferRemote(loc) {
			remote = true
			break
		}
	}
	tags := []string{l.Category}
	if s := strings.TrimSpace(l.Sponsorship); s != "" && !strings.EqualFold(s, "Other") {
		tags = append(tags, "sponsorship: "+s)
	}
	return opportunity.Opportunity{
		Title:          strings.TrimSpace(l.Title),
		Description:    fmt.Sprintf("%s internship at %s.", strings.TrimSpace(l.Title), strings.TrimSpace(l.CompanyName)),
		Organization:   strings.TrimSpace(l.CompanyName),
		Category:       source.ClassifyRole(l.Title, opportunity.CategoryInternship),
		Location:       location,
		IsRemote:       remote,
		Requirements:   []string{},
		Skills:         []string{},
		Tags:           source.CleanList(tags),
		ApplicationURL: l.URL,
		Source:         Name,
		ExternalID:     l.ID.String(),
		Duration:       strings.Join(source.CleanList(l.Terms), ", "),
		PostedAt:       source.Epoch(l.DatePosted),
	}
}
