// Package remoteok adapts the RemoteOK public job feed.
package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "remoteok"

const defaultFeedURL = "https://remoteok.com/api"

// Config holds the feed location.
type Config struct {
	FeedURL  string
	Fallback source.Fallback
}

// Adapter reads the RemoteOK feed.
type Adapter struct {
	cfg    Config
	client *source.Client
	logger *zap.Logger
}

// New builds an Adapter.
func New(cfg Config, client *source.Client, logger *zap.Logger) *Adapter {
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
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
	return []opportunity.Category{opportunity.CategoryStartup}
}

type job struct {
	ID          source.FlexibleID `json:"id"`
	Legal       string            `json:"legal"`
	Epoch       int64             `json:"epoch"`
	Date        string            `json:"date"`
	Company     string            `json:"company"`
	Position    string            `json:"position"`
	Tags        []string          `json:"tags"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	SalaryMin   float64           `json:"salary_min"`
	SalaryMax   float64           `json:"salary_max"`
	URL         string            `json:"url"`
	ApplyURL    string            `json:"apply_url"`
}

// Fetch implements source.Adapter. The feed's leading legal notice and any
// element without an id are skipped.
func (a *Adapter) Fetch(ctx context.Context, _ source.Hints) ([]opportunity.Opportunity, error) {
	records, err := a.fetch(ctx)
	if err != nil {
		return a.cfg.Fallback.Recover(Name, err, a.logger)
	}
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context) ([]opportunity.Opportunity, error) {
	header := http.Header{}
	header.Set("User-Agent", source.FirstNonEmpty(a.client.UserAgent(), "opportunity-discovery"))

	var raw []json.RawMessage
	if err := a.client.GetJSON(ctx, a.cfg.FeedURL, header, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	out := make([]opportunity.Opportunity, 0, len(raw))
	for _, elem := range raw {
		var j job
		if err := json.Unmarshal(elem, &j); err != nil {
			a.logger.Debug("skipping malformed element", zap.Error(err))
			continue
		}
		if j.ID == "" || j.Legal != "" || strings.TrimSpace(j.Position) == "" {
			continue
		}
		out = append(out, j.toOpportunity())
	}
	return out, nil
}

func (j job) toOpportunity() opportunity.Opportunity {
	posted := source.Epoch(j.Epoch)
	if posted == nil {
		posted = source.ParseTime(j.Date)
	}
	opp := opportunity.Opportunity{
		Title:          strings.TrimSpace(j.Position),
		Description:    source.PlainText(j.Description),
		Organization:   strings.TrimSpace(j.Company),
		Category:       source.ClassifyRole(j.Position, opportunity.CategoryStartup),
		Location:       source.FirstNonEmpty(j.Location, "Remote"),
		IsRemote:       true,
		Requirements:   []string{},
		Skills:         source.CleanList(j.Tags),
		Tags:           []string{"remote"},
		ApplicationURL: source.FirstNonEmpty(j.ApplyURL, j.URL),
		Source:         Name,
		ExternalID:     j.ID.String(),
		PostedAt:       posted,
	}
	if j.SalaryMin > 0 || j.SalaryMax > 0 {
		opp.Compensation = opportunity.CompensationPaid
	}
	return opp
}
