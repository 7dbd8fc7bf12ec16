// Package jooble adapts the Jooble job search API, the secondary job
// search provider.
package jooble

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "jooble"

const (
	defaultBaseURL  = "https://jooble.org/api"
	defaultPageSize = 20
)

// Config holds the API key and endpoint override.
type Config struct {
	BaseURL  string
	APIKey   string
	Fallback source.Fallback
}

// Adapter posts search filters to Jooble.
type Adapter struct {
	cfg    Config
	client *source.Client
	logger *zap.Logger
}

// New builds an Adapter.
func New(cfg Config, client *source.Client, logger *zap.Logger) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		client.AddSecrets(cfg.APIKey)
	}
	return &Adapter{cfg: cfg, client: client, logger: logger.Named(Name)}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryInternship}
}

type request struct {
	Keywords     string `json:"keywords"`
	Location     string `json:"location,omitempty"`
	Page         string `json:"page"`
	ResultOnPage string `json:"ResultOnPage"`
}

type job struct {
	ID       source.FlexibleID `json:"id"`
	Title    string            `json:"title"`
	Location string            `json:"location"`
	Snippet  string            `json:"snippet"`
	Salary   string            `json:"salary"`
	Source   string            `json:"source"`
	Type     string            `json:"type"`
	Link     string            `json:"link"`
	Company  string            `json:"company"`
	Updated  string            `json:"updated"`
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, hints source.Hints) ([]opportunity.Opportunity, error) {
	records, err := a.fetch(ctx, hints)
	if err != nil {
		return a.cfg.Fallback.Recover(Name, err, a.logger)
	}
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context, hints source.Hints) ([]opportunity.Opportunity, error) {
	if a.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: missing api_key", Name, opportunity.ErrProviderUnavailable)
	}

	keywords := hints.Keyword
	if keywords == "" {
		keywords = "internship"
	}
	body := request{
		Keywords:     keywords,
		Location:     hints.Location,
		Page:         fmt.Sprint(hints.PageOrDefault()),
		ResultOnPage: fmt.Sprint(hints.PageSizeOrDefault(defaultPageSize)),
	}

	var raw json.RawMessage
	endpoint := a.cfg.BaseURL + "/" + url.PathEscape(a.cfg.APIKey)
	if err := a.client.PostJSON(ctx, endpoint, body, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	jobs, err := source.DecodeList[job](raw, "jobs", "data")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", Name, opportunity.ErrParseFailure, err)
	}

	out := make([]opportunity.Opportunity, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.toOpportunity())
	}
	return out, nil
}

func (j job) toOpportunity() opportunity.Opportunity {
	opp := opportunity.Opportunity{
		Title:          strings.TrimSpace(j.Title),
		Description:    source.PlainText(j.Snippet),
		Organization:   strings.TrimSpace(j.Company),
		Category:       source.ClassifyRole(j.Title, opportunity.CategoryInternship),
		Location:       strings.TrimSpace(j.Location),
		Requirements:   []string{},
		Skills:         []string{},
		Tags:           source.CleanList([]string{j.Type, j.Source}),
		ApplicationURL: j.Link,
		Source:         Name,
		ExternalID:     j.ID.String(),
		PostedAt:       source.ParseTime(j.Updated),
	}
	opp.IsRemote = source.InferRemote(opp.Location)
	if strings.TrimSpace(j.Salary) != "" {
		opp.Compensation = opportunity.CompensationPaid
	}
	if t := strings.ToLower(j.Type); strings.Contains(t, "part") {
		opp.Duration = "part-time"
	} else if strings.Contains(t, "full") {
		opp.Duration = "full-time"
	}
	return opp
}
