package remoteok

import "github.com/JakeFAU/opportunity-discovery/internal/opportunity"

// Catalog returns the built-in startup roles served when the feed is down.
func Catalog() []opportunity.Opportunity {
	return []opportunity.Opportunity{
		{
			Title:          "Founding Engineer",
			Description:    "Early engineer at a seed-stage developer tools startup.",
			Organization:   "Example Labs",
			Category:       opportunity.CategoryStartup,
			Location:       "Remote",
			IsRemote:       true,
			Compensation:   opportunity.CompensationEquity,
			Requirements:   []string{},
			Skills:         []string{"Go", "Kubernetes"},
			Tags:           []string{"remote"},
			ApplicationURL: "https://remoteok.com/",
			ExternalID:     "static-founding-engineer",
		},
		{
			Title:          "Growth Marketing Intern",
			Description:    "Run experiments on acquisition channels for a remote-first startup.",
			Organization:   "Example Ventures",
			Category:       opportunity.CategoryInternship,
			Location:       "Remote",
			IsRemote:       true,
			Compensation:   opportunity.CompensationStipend,
			Requirements:   []string{},
			Skills:         []string{"Marketing", "Analytics"},
			Tags:           []string{"remote"},
			ApplicationURL: "https://remoteok.com/",
			ExternalID:     "static-growth-intern",
		},
	}
}
