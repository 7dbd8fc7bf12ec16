// Package opportunity defines the canonical record shared by every provider,
// storage backend and query path.
package opportunity

import (
	"time"
)

// Category classifies an opportunity.
type Category string

// Category values accepted by the filter and persisted in the store.
const (
	CategoryResearch       Category = "research"
	CategoryStartup        Category = "startup"
	CategoryNonprofit      Category = "nonprofit"
	CategoryStudentOrg     Category = "student-org"
	CategoryVolunteer      Category = "volunteer"
	CategoryInternship     Category = "internship"
	CategoryHackathon      Category = "hackathon"
	CategoryCompetition    Category = "competition"
	CategoryApprenticeship Category = "apprenticeship"
	CategoryExternship     Category = "externship"
)

var categories = map[Category]struct{}{
	CategoryResearch:       {},
	CategoryStartup:        {},
	CategoryNonprofit:      {},
	CategoryStudentOrg:     {},
	CategoryVolunteer:      {},
	CategoryInternship:     {},
	CategoryHackathon:      {},
	CategoryCompetition:    {},
	CategoryApprenticeship: {},
	CategoryExternship:     {},
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Compensation describes how an opportunity pays.
type Compensation string

// Compensation values.
const (
	CompensationPaid           Compensation = "paid"
	CompensationUnpaid         Compensation = "unpaid"
	CompensationStipend        Compensation = "stipend"
	CompensationAcademicCredit Compensation = "academic-credit"
	CompensationEquity         Compensation = "equity"
)

// Valid reports whether c belongs to the closed compensation set.
func (c Compensation) Valid() bool {
	switch c {
	case CompensationPaid, CompensationUnpaid, CompensationStipend, CompensationAcademicCredit, CompensationEquity:
		return true
	default:
		return false
	}
}

// TagStaticFallback marks records served from an adapter's built-in catalog
// instead of the live provider.
const TagStaticFallback = "static-fallback"

// Opportunity is the normalized record every adapter produces.
type Opportunity struct {
	ID             string       `json:"id,omitempty"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Organization   string       `json:"organization"`
	Category       Category     `json:"category,omitempty"`
	Location       string       `json:"location"`
	IsRemote       bool         `json:"is_remote"`
	Compensation   Compensation `json:"compensation,omitempty"`
	Requirements   []string     `json:"requirements"`
	Skills         []string     `json:"skills"`
	Tags           []string     `json:"tags"`
	ApplicationURL string       `json:"application_url,omitempty"`
	Deadline       *time.Time   `json:"deadline,omitempty"`
	Source         string       `json:"source"`
	ExternalID     string       `json:"external_id,omitempty"`
	EstimatedHours *int         `json:"estimated_hours,omitempty"`
	Duration       string       `json:"duration,omitempty"`
	PostedAt       *time.Time   `json:"posted_date,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Key is the identity of a persisted opportunity.
type Key struct {
	Source     string
	ExternalID string
}

// Known reports whether the key can be matched against existing records.
// Providers without stable ids produce unknown keys, which always insert.
func (k Key) Known() bool {
	return k.ExternalID != ""
}

// Key returns the identity key of the record.
func (o Opportunity) Key() Key {
	return Key{Source: o.Source, ExternalID: o.ExternalID}
}

// HasTag reports whether tag is attached to the record.
func (o Opportunity) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalized returns a copy whose list fields are non-nil.
func (o Opportunity) Normalized() Opportunity {
	if o.Requirements == nil {
		o.Requirements = []string{}
	}
	if o.Skills == nil {
		o.Skills = []string{}
	}
	if o.Tags == nil {
		o.Tags = []string{}
	}
	return o
}

// SavedOpportunity links a user to an opportunity they bookmarked.
type SavedOpportunity struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	OpportunityID string    `json:"opportunity_id"`
	Note          string    `json:"note,omitempty"`
	SavedAt       time.Time `json:"saved_at"`
}

// DefaultLimit caps query results when the caller does not ask for a size.
const DefaultLimit = 5

// MaxLimit is the largest page a caller may request.
const MaxLimit = 100

// Filter narrows a set of opportunities. Every set field must match.
type Filter struct {
	Category     Category     `json:"category,omitempty" validate:"omitempty,category"`
	Location     string       `json:"location,omitempty" validate:"max=200"`
	Compensation Compensation `json:"compensation,omitempty" validate:"omitempty,compensation"`
	IsRemote     *bool        `json:"is_remote,omitempty"`
	Skills       []string     `json:"skills,omitempty" validate:"max=25,dive,max=100"`
	Keyword      string       `json:"keyword,omitempty" validate:"max=200"`
	Limit        int          `json:"limit,omitempty" validate:"gte=0,lte=100"`
	Offset       int          `json:"offset,omitempty" validate:"gte=0"`
	Shuffle      bool         `json:"shuffle,omitempty"`
}

// EffectiveLimit returns the page size to apply.
func (f Filter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Page is a window over matching opportunities plus the total match count.
type Page struct {
	Opportunities []Opportunity `json:"opportunities"`
	Total         int           `json:"total"`
}
