package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultBudgetMax is applied when a user leaves the upper budget bound unset
const DefaultBudgetMax = 100000.0

// UserPreferences is a user's onboarding submission. There is one active
// record per user; saving replaces it wholesale.
type UserPreferences struct {
	UserID           string    `json:"userId"`
	Countries        []string  `json:"countries"`
	StudyLevel       string    `json:"studyLevel"`
	Stream           string    `json:"stream"`
	BudgetMin        float64   `json:"budgetMin"`
	BudgetMax        float64   `json:"budgetMax"`
	NeedsScholarship bool      `json:"needsScholarship"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

// WithDefaults returns a copy with blank countries dropped and unset budget
// bounds replaced by their defaults (min 0, max 100000).
func (p UserPreferences) WithDefaults() UserPreferences {
	out := p
	out.Countries = make([]string, 0, len(p.Countries))
	for _, c := range p.Countries {
		if c = strings.TrimSpace(c); c != "" {
			out.Countries = append(out.Countries, c)
		}
	}
	if out.BudgetMin < 0 {
		out.BudgetMin = 0
	}
	if out.BudgetMax <= 0 {
		out.BudgetMax = DefaultBudgetMax
	}
	return out
}

// ParseCountryList accepts either a JSON array (`["Canada","USA"]`) or a
// comma separated list and returns the trimmed, non-empty entries.
func ParseCountryList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return compact(list)
		}
		raw = strings.NewReplacer("[", "", "]", "", `"`, "").Replace(raw)
	}

	return compact(strings.Split(raw, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
