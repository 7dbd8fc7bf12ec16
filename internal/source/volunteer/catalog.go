package volunteer

import "github.com/JakeFAU/opportunity-discovery/internal/opportunity"

// Catalog returns the built-in listings served when the live API is down.
func Catalog() []opportunity.Opportunity {
	hours := 4
	return []opportunity.Opportunity{
		{
			Title:          "Youth Coding Club Mentor",
			Description:    "Mentor middle school students through weekly beginner programming projects.",
			Organization:   "Code Forward",
			Category:       opportunity.CategoryVolunteer,
			Location:       "Remote",
			IsRemote:       true,
			Compensation:   opportunity.CompensationUnpaid,
			Requirements:   []string{"Background check"},
			Skills:         []string{"Python", "Mentoring"},
			Tags:           []string{"education"},
			ApplicationURL: "https://www.volunteerconnector.org/",
			ExternalID:     "static-code-mentor",
			EstimatedHours: &hours,
			Duration:       "ongoing",
		},
		{
			Title:          "Food Bank Logistics Volunteer",
			Description:    "Coordinate weekend intake and distribution shifts at a community food bank.",
			Organization:   "Community Harvest",
			Category:       opportunity.CategoryNonprofit,
			Location:       "Boston, MA",
			Compensation:   opportunity.CompensationUnpaid,
			Requirements:   []string{},
			Skills:         []string{"Logistics", "Teamwork"},
			Tags:           []string{"food security"},
			ApplicationURL: "https://www.volunteerconnector.org/",
			ExternalID:     "static-food-bank",
			Duration:       "weekends",
		},
	}
}
