package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicounsel/backend/internal/domain"
)

func TestCatalogInsights_FilterOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("collects countries and cost bounds", func(t *testing.T) {
		loader := &MockCatalogLoader{catalog: &domain.Catalog{Universities: []domain.University{
			{Country: "Canada", TotalCost: "$20000"},
			{Country: " Canada", TuitionFee: "30000", LivingCost: "10000"},
			{Country: "Australia", TotalCost: "AUD $40000-60000"},
			{Country: "Ethiopia", TotalCost: "N/A"},
			{Country: "", TotalCost: "5000"},
		}}}

		opts, err := NewCatalogInsights(loader).FilterOptions(ctx)
		require.NoError(t, err)

		assert.Equal(t, []string{"Australia", "Canada", "Ethiopia"}, opts.Countries)
		assert.Equal(t, 5000.0, opts.BudgetMin)
		assert.Equal(t, 50000.0, opts.BudgetMax)
		assert.InDelta(t, 30000.0, opts.AvgCostByCountry["Canada"], 1e-9)
		assert.InDelta(t, 50000.0, opts.AvgCostByCountry["Australia"], 1e-9)
		_, hasEthiopia := opts.AvgCostByCountry["Ethiopia"]
		assert.False(t, hasEthiopia)
	})

	t.Run("defaults budget bounds when no cost parses", func(t *testing.T) {
		loader := &MockCatalogLoader{catalog: &domain.Catalog{Universities: []domain.University{
			{Country: "Canada", TotalCost: "varies"},
		}}}

		opts, err := NewCatalogInsights(loader).FilterOptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.0, opts.BudgetMin)
		assert.Equal(t, 100000.0, opts.BudgetMax)
	})

	t.Run("propagates catalog errors", func(t *testing.T) {
		loader := &MockCatalogLoader{err: domain.ErrCatalogUnavailable}
		_, err := NewCatalogInsights(loader).FilterOptions(ctx)
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})
}

func TestCatalogInsights_Scholarships(t *testing.T) {
	loader := &MockCatalogLoader{catalog: &domain.Catalog{Universities: []domain.University{
		{Name: "Monash", Scholarships: "Merit Award; International Excellence | Research Grant"},
		{Name: "Toronto", Scholarships: "merit award\nLester B. Pearson"},
		{Name: "Brock", Scholarships: "International Excellence;Merit Award"},
		{Name: "Empty", Scholarships: " ; "},
	}}}

	got, err := NewCatalogInsights(loader).Scholarships(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, domain.ScholarshipSummary{Text: "Merit Award", Count: 3, SampleUniversity: "Monash"}, got[0])
	assert.Equal(t, "International Excellence", got[1].Text)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, 1, got[2].Count)
	assert.Equal(t, 1, got[3].Count)
}

func TestCatalogInsights_CompareFees(t *testing.T) {
	ctx := context.Background()
	loader := &MockCatalogLoader{catalog: &domain.Catalog{Universities: []domain.University{
		{ID: "AU-001", Name: "Monash University", TuitionFee: "AUD $40,000", LivingCost: "AUD $20,000", TotalCost: "AUD $40000-60000", Course: "Computer Science"},
		{ID: "AU-001", Name: "Monash University", TotalCost: "AUD $70000", Course: "Nursing"},
		{ID: "CA-002", Name: "Brock University", TuitionFee: "$18,000", LivingCost: "N/A"},
		{Name: "Addis Ababa University", TotalCost: "TBD"},
	}}}
	insights := NewCatalogInsights(loader)

	t.Run("compares in request order", func(t *testing.T) {
		got, err := insights.CompareFees(ctx, []string{"CA-002", "AU-001", "XX-404", "name:addis ababa university"})
		require.NoError(t, err)
		require.Len(t, got, 3)

		brock := got[0]
		assert.Equal(t, "CA-002", brock.UniversityID)
		require.NotNil(t, brock.TuitionFee)
		assert.Equal(t, 18000.0, *brock.TuitionFee)
		assert.Nil(t, brock.LivingCost)
		require.NotNil(t, brock.TotalCost)
		assert.Equal(t, 18000.0, *brock.TotalCost, "tuition plus unknown living cost")

		monash := got[1]
		assert.Equal(t, "Computer Science", monash.Course, "first catalog row")
		require.NotNil(t, monash.TotalCost)
		assert.Equal(t, 50000.0, *monash.TotalCost)

		addis := got[2]
		assert.Equal(t, "name:addis ababa university", addis.UniversityID)
		assert.Nil(t, addis.TotalCost)
	})

	t.Run("needs two distinct universities", func(t *testing.T) {
		for _, keys := range [][]string{nil, {"AU-001"}, {"AU-001", " AU-001 ", ""}} {
			_, err := insights.CompareFees(ctx, keys)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		}
	})

	t.Run("propagates catalog errors", func(t *testing.T) {
		_, err := NewCatalogInsights(&MockCatalogLoader{err: domain.ErrCatalogUnavailable}).CompareFees(ctx, []string{"A", "B"})
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	})
}
