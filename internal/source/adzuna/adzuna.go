// Package adzuna adapts the Adzuna job search API.
package adzuna

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "adzuna"

const (
	defaultBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	defaultCountry  = "us"
	defaultPageSize = 20
)

// Config holds credentials and endpoint overrides.
type Config struct {
	BaseURL  string
	AppID    string
	AppKey   string
	Country  string
	Fallback source.Fallback
}

// Adapter fetches listings from Adzuna.
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
	if cfg.Country == "" {
		cfg.Country = defaultCountry
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		client.AddSecrets(cfg.AppKey)
	}
	return &Adapter{cfg: cfg, client: client, logger: logger.Named(Name)}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryInternship, opportunity.CategoryApprenticeship}
}

type response struct {
	Results []result `json:"results"`
	Count   int      `json:"count"`
}

type result struct {
	ID           source.FlexibleID `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Company      named             `json:"company"`
	Location     named             `json:"location"`
	Category     category          `json:"category"`
	SalaryMin    float64           `json:"salary_min"`
	SalaryMax    float64           `json:"salary_max"`
	RedirectURL  string            `json:"redirect_url"`
	Created      string            `json:"created"`
	ContractTime string            `json:"contract_time"`
	ContractType string            `json:"contract_type"`
}

type named struct {
	DisplayName string `json:"display_name"`
}

type category struct {
	Label string `json:"label"`
	Tag   string `json:"tag"`
}

// Fetch implements source.Adapter. Missing credentials are reported as the
// provider being unavailable.
func (a *Adapter) Fetch(ctx context.Context, hints source.Hints) ([]opportunity.Opportunity, error) {
	records, err := a.fetch(ctx, hints)
	if err != nil {
		return a.cfg.Fallback.Recover(Name, err, a.logger)
	}
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context, hints source.Hints) ([]opportunity.Opportunity, error) {
	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		return nil, fmt.Errorf("%s: %w: missing app_id or app_key", Name, opportunity.ErrProviderUnavailable)
	}

	var resp response
	if err := a.client.GetJSON(ctx, a.searchURL(hints), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	out := make([]opportunity.Opportunity, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, r.toOpportunity())
	}
	a.logger.Debug("fetched listings", zap.Int("records", len(out)), zap.Int("count", resp.Count))
	return out, nil
}

func (a *Adapter) searchURL(hints source.Hints) string {
	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(hints.PageSizeOrDefault(defaultPageSize)))
	what := hints.Keyword
	if what == "" && hints.Category != "" {
		what = string(hints.Category)
	}
	if what != "" {
		params.Set("what", what)
	}
	if hints.Location != "" {
		params.Set("where", hints.Location)
	}
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	return fmt.Sprintf("%s/%s/search/%d?%s", a.cfg.BaseURL, a.cfg.Country, hints.PageOrDefault(), params.Encode())
}

func (r result) toOpportunity() opportunity.Opportunity {
	opp := opportunity.Opportunity{
		Title:          strings.TrimSpace(r.Title),
		Description:    source.PlainText(r.Description),
		Organization:   strings.TrimSpace(r.Company.DisplayName),
		Category:       source.ClassifyRole(r.Title, opportunity.CategoryInternship),
		Location:       strings.TrimSpace(r.Location.DisplayName),
		Requirements:   []string{},
		Skills:         []string{},
		Tags:           source.CleanList([]string{r.Category.Label, r.ContractTime, r.ContractType}),
		ApplicationURL: r.RedirectURL,
		Source:         Name,
		ExternalID:     r.ID.String(),
		PostedAt:       source.ParseTime(r.Created),
	}
	opp.IsRemote = source.InferRemote(opp.Location) || source.InferRemote(opp.Title)
	if r.SalaryMin > 0 || r.SalaryMax > 0 {
		opp.Compensation = opportunity.CompensationPaid
	}
	switch r.ContractTime {
	case "full_time":
		opp.Duration = "full-time"
	case "part_time":
		opp.Duration = "part-time"
	}
	return opp
}
