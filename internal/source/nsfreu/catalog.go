package nsfreu

import "github.com/JakeFAU/opportunity-discovery/internal/opportunity"

func site(id, title, org, location string, skills []string) opportunity.Opportunity {
	hours := 40
	return opportunity.Opportunity{
		Title:          title,
		Description:    "Ten-week funded summer research placement with a faculty mentor, housing and travel support.",
		Organization:   org,
		Category:       opportunity.CategoryResearch,
		Location:       location,
		Compensation:   opportunity.CompensationStipend,
		Requirements:   []string{"US citizen or permanent resident", "Enrolled undergraduate"},
		Skills:         skills,
		Tags:           []string{"reu", TagCurated},
		ApplicationURL: "https://www.nsf.gov/crssprgm/reu/reu_search.jsp",
		ExternalID:     id,
		EstimatedHours: &hours,
		Duration:       "10 weeks (summer)",
	}
}

// Catalog returns the curated REU sites.
func Catalog() []opportunity.Opportunity {
	return []opportunity.Opportunity{
		site("reu-cs-ml", "REU Site: Machine Learning for Science", "University of Washington", "Seattle, WA",
			[]string{"Python", "Machine learning"}),
		site("reu-bio-genomics", "REU Site: Computational Genomics", "Johns Hopkins University", "Baltimore, MD",
			[]string{"Bioinformatics", "R"}),
		site("reu-chem-materials", "REU Site: Sustainable Materials Chemistry", "University of Texas at Austin", "Austin, TX",
			[]string{"Lab techniques", "Chemistry"}),
		site("reu-ocean", "REU Site: Coastal Ocean Processes", "Woods Hole Oceanographic Institution", "Woods Hole, MA",
			[]string{"Field work", "MATLAB"}),
		site("reu-math", "REU Site: Discrete Mathematics", "Rutgers University", "New Brunswick, NJ",
			[]string{"Proofs", "Combinatorics"}),
	}
}
