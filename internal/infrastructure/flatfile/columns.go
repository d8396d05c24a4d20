package flatfile

import (
	"strings"

	"github.com/unicounsel/backend/internal/domain"
)

// field maps one University attribute to the header names it may appear
// under. Names are tried in order.
type field struct {
	names []string
	set   func(u *domain.University, v string)
}

// fields covers the detailed layout ("University ID", "Tuition Fee (Annual)")
// and the basic layout ("University name", "URL", lower-case "country").
var fields = []field{
	{names: []string{"University ID", "university_id", "id"}, set: func(u *domain.University, v string) { u.ID = v }},
	{names: []string{"University Name", "University name", "name", "university_name"}, set: func(u *domain.University, v string) { u.Name = v }},
	{names: []string{"Country", "country"}, set: func(u *domain.University, v string) { u.Country = v }},
	{names: []string{"State", "state"}, set: func(u *domain.University, v string) { u.State = v }},
	{names: []string{"City", "city"}, set: func(u *domain.University, v string) { u.City = v }},
	{names: []string{"Program Level", "program_level"}, set: func(u *domain.University, v string) { u.ProgramLevel = v }},
	{names: []string{"Course", "course"}, set: func(u *domain.University, v string) { u.Course = v }},
	{names: []string{"Tuition Fee (Annual)", "tuition_fee_annual"}, set: func(u *domain.University, v string) { u.TuitionFee = v }},
	{names: []string{"Living Cost (Annual)", "living_cost_annual"}, set: func(u *domain.University, v string) { u.LivingCost = v }},
	{names: []string{"Total Estimated Cost", "total_estimated_cost"}, set: func(u *domain.University, v string) { u.TotalCost = v }},
	{names: []string{"Scholarships", "scholarships"}, set: func(u *domain.University, v string) { u.Scholarships = v }},
	{names: []string{"Intl Services", "intl_services"}, set: func(u *domain.University, v string) { u.IntlServices = v }},
	{names: []string{"Official Website", "URL", "website"}, set: func(u *domain.University, v string) { u.Website = v }},
	{names: []string{"Image URL", "image_url"}, set: func(u *domain.University, v string) { u.ImageURL = v }},
	{names: []string{"Latitude", "latitude"}, set: func(u *domain.University, v string) { u.Latitude = parseCoordinate(v) }},
	{names: []string{"Longitude", "longitude"}, set: func(u *domain.University, v string) { u.Longitude = parseCoordinate(v) }},
}

// resolveColumns returns, for each entry in fields, the index of the header
// column that feeds it, or -1. Exact names win over case-insensitive ones.
func resolveColumns(headers []string) []int {
	exact := make(map[string]int, len(headers))
	folded := make(map[string]int, len(headers))
	for i := len(headers) - 1; i >= 0; i-- {
		exact[headers[i]] = i
		folded[strings.ToLower(strings.TrimSpace(headers[i]))] = i
	}

	columns := make([]int, len(fields))
	for i, f := range fields {
		columns[i] = lookupColumn(f.names, exact, folded)
	}
	return columns
}

func lookupColumn(names []string, exact, folded map[string]int) int {
	for _, name := range names {
		if idx, ok := exact[name]; ok {
			return idx
		}
	}
	for _, name := range names {
		if idx, ok := folded[strings.ToLower(strings.TrimSpace(name))]; ok {
			return idx
		}
	}
	return -1
}
