// Package volunteer adapts the VolunteerConnector public search API.
package volunteer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "volunteerconnector"

const defaultBaseURL = "https://www.volunteerconnector.org"

// Config holds endpoint overrides.
type Config struct {
	BaseURL  string
	Fallback source.Fallback
}

// Adapter searches volunteer listings.
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
	return &Adapter{cfg: cfg, client: client, logger: logger.Named("volunteer")}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryVolunteer, opportunity.CategoryNonprofit}
}

type response struct {
	Count   int       `json:"count"`
	Next    string    `json:"next"`
	Results []listing `json:"results"`
}

type listing struct {
	ID             source.FlexibleID `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	URL            string            `json:"url"`
	Organization   organization      `json:"organization"`
	Dates          string            `json:"dates"`
	Duration       string            `json:"duration"`
	RemoteOrOnline bool              `json:"remote_or_online"`
	Audience       audience          `json:"audience"`
	Activities     []activity        `json:"activities"`
}

type organization struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type audience struct {
	Scope   string   `json:"scope"`
	Regions []string `json:"regions"`
}

type activity struct {
	Name     string `json:"name"`
	Category string `json:"category"`
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
	params := url.Values{}
	if hints.Keyword != "" {
		params.Set("q", hints.Keyword)
	}
	if hints.Page > 1 {
		params.Set("page", fmt.Sprint(hints.Page))
	}
	endpoint := a.cfg.BaseURL + "/api/search/"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var resp response
	if err := a.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	category := opportunity.CategoryVolunteer
	if hints.Category == opportunity.CategoryNonprofit {
		category = opportunity.CategoryNonprofit
	}
	out := make([]opportunity.Opportunity, 0, len(resp.Results))
	for _, l := range resp.Results {
		out = append(out, l.toOpportunity(category))
	}
	return out, nil
}

func (l listing) toOpportunity(category opportunity.Category) opportunity.Opportunity {
	skills := make([]string, 0, len(l.Activities))
	tags := make([]string, 0, len(l.Activities))
	for _, act := range l.Activities {
		skills = append(skills, act.Name)
		tags = append(tags, act.Category)
	}
	location := strings.Join(source.CleanList(l.Audience.Regions), "; ")
	if l.RemoteOrOnline {
		if location == "" {
			location = "Remote"
		} else {
			location += " (Remote)"
		}
	}
	return opportunity.Opportunity{
		Title:          strings.TrimSpace(l.Title),
		Description:    source.PlainText(l.Description),
		Organization:   strings.TrimSpace(l.Organization.Name),
		Category:       category,
		Location:       location,
		IsRemote:       l.RemoteOrOnline,
		Compensation:   opportunity.CompensationUnpaid,
		Requirements:   []string{},
		Skills:         source.CleanList(skills),
		Tags:           source.CleanList(append(tags, l.Audience.Scope)),
		ApplicationURL: l.URL,
		Source:         Name,
		ExternalID:     l.ID.String(),
		Duration:       source.FirstNonEmpty(l.Duration, l.Dates),
	}
}
