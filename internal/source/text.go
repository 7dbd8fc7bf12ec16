package source

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// PlainText strips markup from provider descriptions and collapses
// whitespace. Input without tags is only whitespace-normalized.
func PlainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			doc.Find("br, p, li, div").Each(func(_ int, sel *goquery.Selection) {
				sel.AppendHtml(" ")
			})
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// InferRemote reports whether a free-text location denotes remote work.
func InferRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.Contains(lower, "remote") || strings.Contains(lower, "anywhere") ||
		strings.Contains(lower, "online") || strings.Contains(lower, "virtual")
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTime parses the date formats providers emit, including epoch
// seconds. It returns nil when s is empty or unrecognized.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Epoch(secs)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// Epoch converts unix seconds to a UTC time. Zero and negative inputs
// yield nil.
func Epoch(secs int64) *time.Time {
	if secs <= 0 {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}

// ClassifyRole refines a job category from its title. Titles naming an
// apprenticeship, externship or internship win over def.
func ClassifyRole(title string, def opportunity.Category) opportunity.Category {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "apprentice"):
		return opportunity.CategoryApprenticeship
	case strings.Contains(lower, "extern"):
		return opportunity.CategoryExternship
	case strings.Contains(lower, "intern") && !strings.Contains(lower, "internal") &&
		!strings.Contains(lower, "international"):
		return opportunity.CategoryInternship
	default:
		return def
	}
}

// CleanList trims entries, drops blanks and removes case-insensitive
// duplicates while keeping first-seen order. It never returns nil.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// FirstNonEmpty returns the first non-blank value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
