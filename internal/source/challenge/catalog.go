package challenge

import "github.com/JakeFAU/opportunity-discovery/internal/opportunity"

// Catalog returns the built-in challenges served when the feed is down.
func Catalog() []opportunity.Opportunity {
	return []opportunity.Opportunity{
		{
			Title:          "Open Data Civic Hackathon",
			Description:    "Teams build tools on public datasets over a weekend. Prize pool for top entries.",
			Organization:   "Challenge.gov",
			Category:       opportunity.CategoryHackathon,
			Location:       "Online",
			IsRemote:       true,
			Compensation:   opportunity.CompensationPaid,
			Requirements:   []string{"Teams of up to 4"},
			Skills:         []string{"Data analysis", "Web development"},
			Tags:           []string{"open data"},
			ApplicationURL: "https://www.challenge.gov/",
			ExternalID:     "static-civic-hackathon",
			Duration:       "48 hours",
		},
		{
			Title:          "Student Clean Energy Design Competition",
			Description:    "Design a low-cost energy storage concept and present it to a federal panel.",
			Organization:   "Challenge.gov",
			Category:       opportunity.CategoryCompetition,
			Location:       "Online",
			IsRemote:       true,
			Compensation:   opportunity.CompensationPaid,
			Requirements:   []string{"Enrolled student"},
			Skills:         []string{"Engineering", "Technical writing"},
			Tags:           []string{"energy"},
			ApplicationURL: "https://www.challenge.gov/",
			ExternalID:     "static-clean-energy",
			Duration:       "3 months",
		},
	}
}
