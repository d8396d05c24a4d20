package domain

// MatchResult is one ranked university for a user. Favorite and shortlist
// flags come from user state and never influence the score.
type MatchResult struct {
	University    University `json:"university"`
	Score         float64    `json:"matchScore"` // 0-100, two decimals
	Reason        string     `json:"matchReason"`
	IsFavorite    bool       `json:"isFavorite"`
	IsShortlisted bool       `json:"isShortlisted"`
}

// UserFlags holds the per-user state attached to a university
type UserFlags struct {
	IsFavorite    bool `json:"isFavorite"`
	IsShortlisted bool `json:"isShortlisted"`
}

// MatchPage is a filtered, sorted and paginated slice of a user's matches
type MatchPage struct {
	Matches []MatchResult `json:"matches"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"perPage"`
	Pages   int           `json:"pages"`
}

// FilterOptions summarizes the catalog for building search filters
type FilterOptions struct {
	Countries        []string           `json:"countries"`
	BudgetMin        float64            `json:"budgetMin"`
	BudgetMax        float64            `json:"budgetMax"`
	AvgCostByCountry map[string]float64 `json:"avgCostByCountry"`
}

// ScholarshipSummary is one distinct scholarship name found in the catalog
type ScholarshipSummary struct {
	Text             string `json:"text"`
	Count            int    `json:"count"`
	SampleUniversity string `json:"sampleUniversity"`
}

// DashboardStats summarizes a user's matches and flags
type DashboardStats struct {
	TotalMatches int           `json:"totalMatches"`
	TopMatches   int           `json:"topMatches"`
	Favorites    int           `json:"favorites"`
	Shortlisted  int           `json:"shortlisted"`
	Best         []MatchResult `json:"best"`
}

// FeeComparison is one university's yearly costs, normalized for side by
// side comparison. A nil cost could not be read from the catalog text.
type FeeComparison struct {
	UniversityID string   `json:"universityId"`
	Name         string   `json:"name"`
	Country      string   `json:"country"`
	City         string   `json:"city"`
	TuitionFee   *float64 `json:"tuitionFee"`
	LivingCost   *float64 `json:"livingCost"`
	TotalCost    *float64 `json:"totalCost"`
	Scholarships string   `json:"scholarships"`
	ProgramLevel string   `json:"programLevel"`
	Course       string   `json:"course"`
}
