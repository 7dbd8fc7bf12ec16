// Package nsfreu serves a curated catalog of NSF Research Experiences for
// Undergraduates sites. The program publishes no public API.
package nsfreu

import (
	"context"
	"strings"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

// Name is the source id stamped on every record.
const Name = "nsf-reu"

// TagCurated marks records maintained by hand rather than fetched.
const TagCurated = "curated"

// Adapter returns the built-in catalog.
type Adapter struct {
	catalog func() []opportunity.Opportunity
}

// New builds an Adapter over Catalog.
func New() *Adapter {
	return &Adapter{catalog: Catalog}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return Name }

// Categories implements source.Adapter.
func (a *Adapter) Categories() []opportunity.Category {
	return []opportunity.Category{opportunity.CategoryResearch}
}

// Fetch implements source.Adapter. A keyword hint narrows the catalog by
// title, host institution and skills.
func (a *Adapter) Fetch(ctx context.Context, hints source.Hints) ([]opportunity.Opportunity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keyword := strings.ToLower(strings.TrimSpace(hints.Keyword))
	all := a.catalog()
	out := make([]opportunity.Opportunity, 0, len(all))
	for _, rec := range all {
		rec.Source = Name
		if keyword != "" && !mentions(rec, keyword) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func mentions(rec opportunity.Opportunity, keyword string) bool {
	if strings.Contains(strings.ToLower(rec.Title), keyword) ||
		strings.Contains(strings.ToLower(rec.Organization), keyword) {
		return true
	}
	for _, s := range rec.Skills {
		if strings.Contains(strings.ToLower(s), keyword) {
			return true
		}
	}
	return false
}
