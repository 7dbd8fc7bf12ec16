// Package challenge adapts the Challenge.gov RSS feed using a colly
// collector with XPath extraction.
package challenge

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "challenge-gov"

const defaultFeedURL = "https://www.challenge.gov/api/challenges.rss"

// Config holds the feed location.
type Config struct {
	FeedURL  string
	Fallback source.Fallback
}

// Adapter reads the public challenge feed.
type Adapter struct {
	cfg    Config
	client *source.Client
	base   *colly.Collector
	logger *zap.Logger
}

// New builds an Adapter. The collector shares the client's transport.
func New(cfg Config, client *source.Client, logger *zap.Logger) *Adapter {
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(colly.Async(false))
	base.AllowURLRevisit = true
	base.WithTransport(client.Transport())
	base.SetRequestTimeout(client.Timeout())
	if ua := client.UserAgent(); ua != "" {
		base.UserAgent = ua
	}
	return &Adapter{cfg: cfg, client: client, base: base, logger: logger.Named("challenge")}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryCompetition, opportunity.CategoryHackathon}
}

type item struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	GUID        string
	Category    string
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, _ source.Hints) ([]opportunity.Opportunity, error) {
	records, err := a.fetch(ctx)
	if err != nil {
		return a.cfg.Fallback.Recover(Name, err, a.logger)
	}
	return records, nil
}

func (a *Adapter) fetch(ctx context.Context) ([]opportunity.Opportunity, error) {
	if err := a.client.Wait(ctx, a.cfg.FeedURL); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	var (
		mu       sync.Mutex
		items    []item
		fetchErr error
	)
	collector := a.base.Clone()
	// Requests are bound to ctx so cancellation aborts the fetch itself.
	collector.Context = ctx
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/rss+xml, application/xml;q=0.9")
	})
	collector.OnXML("//item", func(e *colly.XMLElement) {
		it := item{
			Title:       e.ChildText("title"),
			Link:        e.ChildText("link"),
			Description: e.ChildText("description"),
			PubDate:     e.ChildText("pubDate"),
			GUID:        e.ChildText("guid"),
			Category:    e.ChildText("category"),
		}
		mu.Lock()
		items = append(items, it)
		mu.Unlock()
	})
	collector.OnError(func(_ *colly.Response, err error) {
		mu.Lock()
		fetchErr = err
		mu.Unlock()
	})

	err := collector.Visit(a.cfg.FeedURL)
	mu.Lock()
	defer mu.Unlock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w: %w", Name, opportunity.ErrProviderUnavailable, ctxErr)
	}
	if err == nil {
		err = fetchErr
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", Name, opportunity.ErrProviderUnavailable, err)
	}
	out := make([]opportunity.Opportunity, 0, len(items))
	for _, it := range items {
		if it.Title == "" {
			continue
		}
		out = append(out, it.toOpportunity())
	}
	return out, nil
}

func (it item) toOpportunity() opportunity.Opportunity {
	description := source.PlainText(it.Description)
	category := opportunity.CategoryCompetition
	text := strings.ToLower(it.Title + " " + description)
	if strings.Contains(text, "hackathon") {
		category = opportunity.CategoryHackathon
	}
	opp := opportunity.Opportunity{
		Title:          strings.TrimSpace(it.Title),
		Description:    description,
		Organization:   "Challenge.gov",
		Category:       category,
		Location:       "Online",
		IsRemote:       true,
		Requirements:   []string{},
		Skills:         []string{},
		Tags:           source.CleanList([]string{it.Category}),
		ApplicationURL: strings.TrimSpace(it.Link),
		Source:         Name,
		ExternalID:     source.FirstNonEmpty(it.GUID, it.Link),
		PostedAt:       source.ParseTime(it.PubDate),
	}
	if strings.Contains(text, "prize") || strings.Contains(text, "award") {
		opp.Compensation = opportunity.CompensationPaid
	}
	return opp
}
