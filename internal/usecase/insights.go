package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/unicounsel/backend/internal/domain"
)

// scholarshipSeparator splits a scholarships cell into individual names
var scholarshipSeparator = regexp.MustCompile(`[;|\n\r]+`)

// Budget bounds reported when no catalog row has a usable cost
const (
	defaultFilterBudgetMin = 0.0
	defaultFilterBudgetMax = 100000.0
)

// CatalogLoader is the part of CatalogProvider the read-only services need
type CatalogLoader interface {
	Load(ctx context.Context) (*domain.Catalog, error)
}

// CatalogInsights derives filter options and summaries from the catalog
type CatalogInsights struct {
	catalog CatalogLoader
}

// NewCatalogInsights creates a new insights service
func NewCatalogInsights(catalog CatalogLoader) *CatalogInsights {
	return &CatalogInsights{catalog: catalog}
}

// FilterOptions lists the catalog's countries, the global budget bounds and
// the average yearly cost per country.
func (s *CatalogInsights) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return buildFilterOptions(catalog.Universities), nil
}

func buildFilterOptions(unis []domain.University) *domain.FilterOptions {
	opts := &domain.FilterOptions{
		Countries:        []string{},
		BudgetMin:        defaultFilterBudgetMin,
		BudgetMax:        defaultFilterBudgetMax,
		AvgCostByCountry: map[string]float64{},
	}

	seen := make(map[string]bool)
	sums := make(map[string]float64)
	counts := make(map[string]int)
	haveCost := false

	for _, u := range unis {
		country := strings.TrimSpace(u.Country)
		if country != "" && !seen[country] {
			seen[country] = true
			opts.Countries = append(opts.Countries, country)
		}

		cost, ok := EstimateTotalCost(u)
		if !ok {
			continue
		}

		if !haveCost || cost < opts.BudgetMin {
			opts.BudgetMin = cost
		}
		if !haveCost || cost > opts.BudgetMax {
			opts.BudgetMax = cost
		}
		haveCost = true

		if country != "" {
			sums[country] += cost
			counts[country]++
		}
	}

	sort.Strings(opts.Countries)
	for country, sum := range sums {
		opts.AvgCostByCountry[country] = sum / float64(counts[country])
	}
	return opts
}

// Scholarships returns every distinct scholarship name in the catalog with
// how often it appears, most frequent first.
func (s *CatalogInsights) Scholarships(ctx context.Context) ([]domain.ScholarshipSummary, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return summarizeScholarships(catalog.Universities), nil
}

func summarizeScholarships(unis []domain.University) []domain.ScholarshipSummary {
	out := make([]domain.ScholarshipSummary, 0)
	index := make(map[string]int)

	for _, u := range unis {
		for _, part := range scholarshipSeparator.Split(u.Scholarships, -1) {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, domain.ScholarshipSummary{
				Text:             name,
				Count:            1,
				SampleUniversity: u.Name,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// minCompared is the fewest universities a fee comparison accepts
const minCompared = 2

// CompareFees lines up the normalized costs of the selected universities in
// request order. Keys are university ids or name keys as produced by
// University.DedupKey; unknown keys are left out.
func (s *CatalogInsights) CompareFees(ctx context.Context, universityKeys []string) ([]domain.FeeComparison, error) {
	keys := make([]string, 0, len(universityKeys))
	seen := make(map[string]bool)
	for _, k := range universityKeys {
		if k = strings.TrimSpace(k); k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if len(keys) < minCompared {
		return nil, fmt.Errorf("%w: select at least %d universities to compare", domain.ErrInvalidRequest, minCompared)
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	byKey := universitiesByKey(catalog.Universities)
	out := make([]domain.FeeComparison, 0, len(keys))
	for _, k := range keys {
		u, ok := byKey[k]
		if !ok {
			continue
		}
		out = append(out, compareFees(u))
	}
	return out, nil
}

func compareFees(u domain.University) domain.FeeComparison {
	c := domain.FeeComparison{
		UniversityID: u.DedupKey(),
		Name:         u.Name,
		Country:      u.Country,
		City:         u.City,
		Scholarships: u.Scholarships,
		ProgramLevel: u.ProgramLevel,
		Course:       u.Course,
	}
	if v, ok := ParseCost(u.TuitionFee); ok {
		c.TuitionFee = &v
	}
	if v, ok := ParseCost(u.LivingCost); ok {
		c.LivingCost = &v
	}
	if v, ok := EstimateTotalCost(u); ok {
		c.TotalCost = &v
	}
	return c
}

// universitiesByKey indexes the first catalog row of each university
func universitiesByKey(unis []domain.University) map[string]domain.University {
	out := make(map[string]domain.University, len(unis))
	for _, u := range unis {
		key := u.DedupKey()
		if _, ok := out[key]; !ok {
			out[key] = u
		}
	}
	return out
}
