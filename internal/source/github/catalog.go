package github

import "github.com/JakeFAU/opportunity-discovery/internal/opportunity"

// Catalog returns the built-in listings served when the file is unreachable.
func Catalog() []opportunity.Opportunity {
	return []opportunity.Opportunity{
		{
			Title:          "Software Engineering Intern",
			Description:    "Summer internship on a product engineering team.",
			Organization:   "Example Tech",
			Category:       opportunity.CategoryInternship,
			Location:       "San Francisco, CA",
			Compensation:   opportunity.CompensationPaid,
			Requirements:   []string{"Pursuing a BS in Computer Science"},
			Skills:         []string{"Go", "SQL"},
			Tags:           []string{"Software Engineering"},
			ApplicationURL: "https://github.com/SimplifyJobs/Summer2025-Internships",
			ExternalID:     "static-swe-intern",
			Duration:       "Summer",
		},
		{
			Title:          "Data Science Intern",
			Description:    "Build models and dashboards with the analytics group.",
			Organization:   "Example Analytics",
			Category:       opportunity.CategoryInternship,
			Location:       "Remote in USA",
			IsRemote:       true,
			Compensation:   opportunity.CompensationPaid,
			Requirements:   []string{},
			Skills:         []string{"Python", "Statistics"},
			Tags:           []string{"Data Science"},
			ApplicationURL: "https://github.com/SimplifyJobs/Summer2025-Internships",
			ExternalID:     "static-ds-intern",
			Duration:       "Summer",
		},
	}
}
