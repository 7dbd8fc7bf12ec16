// Package filter narrows opportunity lists with AND semantics over every
// set criterion, then optionally shuffles before paging.
package filter

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// Engine applies filters. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Engine. A nil rng seeds one from the clock.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Engine{rng: rng}
}

// Match reports whether o satisfies every criterion set on f. Unset
// criteria match everything.
func Match(o opportunity.Opportunity, f opportunity.Filter) bool {
	if f.Category != "" && o.Category != f.Category {
		return false
	}
	if f.Compensation != "" && o.Compensation != f.Compensation {
		return false
	}
	if f.IsRemote != nil && o.IsRemote != *f.IsRemote {
		return false
	}
	if terms := LocationTerms(f.Location); !terms.Empty() && !terms.Matches(o.Location) {
		return false
	}
	if len(f.Skills) > 0 && !overlaps(o.Skills, f.Skills) {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" && !mentions(o, kw) {
		return false
	}
	return true
}

func overlaps(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}

func mentions(o opportunity.Opportunity, kw string) bool {
	return strings.Contains(strings.ToLower(o.Title), kw) ||
		strings.Contains(strings.ToLower(o.Description), kw) ||
		strings.Contains(strings.ToLower(o.Organization), kw)
}

// Apply filters records, shuffles the matches when asked, then returns
// the page selected by offset and limit. Total counts every match.
func (e *Engine) Apply(records []opportunity.Opportunity, f opportunity.Filter) opportunity.Page {
	matched := make([]opportunity.Opportunity, 0, len(records))
	for _, o := range records {
		if Match(o, f) {
			matched = append(matched, o)
		}
	}
	if f.Shuffle {
		e.shuffle(matched)
	}
	return opportunity.Page{Opportunities: window(matched, f.Offset, f.EffectiveLimit()), Total: len(matched)}
}

func (e *Engine) shuffle(records []opportunity.Opportunity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

func window(records []opportunity.Opportunity, offset, limit int) []opportunity.Opportunity {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []opportunity.Opportunity{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
