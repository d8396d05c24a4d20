package usecase

import (
	"sort"
	"strings"

	"github.com/unicounsel/backend/internal/domain"
)

// Sort keys accepted by ListOptions.SortBy
const (
	SortByScore  = "match_score"
	SortByBudget = "budget"
	SortByName   = "name"
)

// Pagination defaults
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListOptions controls how a user's matches are presented
type ListOptions struct {
	Countries []string
	SortBy    string
	Page      int
	PerPage   int
}

// normalized clamps paging values into range
func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.PerPage > MaxPerPage {
		o.PerPage = MaxPerPage
	}
	return o
}

// PresentMatches filters ranked matches by country, re-sorts them and cuts
// out the requested page. The input slice is not modified.
func PresentMatches(matches []domain.MatchResult, opts ListOptions) domain.MatchPage {
	opts = opts.normalized()

	filtered := filterByCountry(matches, opts.Countries)
	sortMatches(filtered, opts.SortBy)

	total := len(filtered)
	start := (opts.Page - 1) * opts.PerPage
	if start > total {
		start = total
	}
	end := start + opts.PerPage
	if end > total {
		end = total
	}

	return domain.MatchPage{
		Matches: filtered[start:end],
		Total:   total,
		Page:    opts.Page,
		PerPage: opts.PerPage,
		Pages:   (total + opts.PerPage - 1) / opts.PerPage,
	}
}

// filterByCountry keeps matches whose country equals one of the wanted
// countries, ignoring case. It always returns a fresh slice.
func filterByCountry(matches []domain.MatchResult, countries []string) []domain.MatchResult {
	wanted := make(map[string]bool)
	for _, c := range countries {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			wanted[c] = true
		}
	}

	out := make([]domain.MatchResult, 0, len(matches))
	for _, m := range matches {
		if len(wanted) > 0 && !wanted[strings.ToLower(strings.TrimSpace(m.University.Country))] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// sortMatches re-sorts in place. Score order is the aggregator's default and
// is re-applied so stored matches read back in any order come out ranked.
func sortMatches(matches []domain.MatchResult, sortBy string) {
	switch sortBy {
	case SortByBudget:
		sort.SliceStable(matches, func(i, j int) bool {
			return costOrZero(matches[i].University) < costOrZero(matches[j].University)
		})
	case SortByName:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].University.Name < matches[j].University.Name
		})
	default:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}
}

// costOrZero sorts unknown costs first, as if free
func costOrZero(u domain.University) float64 {
	cost, _ := ParseCost(u.TotalCost)
	return cost
}

// ParseSortBy maps a query value onto a known sort key
func ParseSortBy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SortByBudget:
		return SortByBudget
	case SortByName:
		return SortByName
	default:
		return SortByScore
	}
}
