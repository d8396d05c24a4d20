package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicounsel/backend/internal/domain"
)

func newTestMatchService(loader CatalogLoader, store *MockStore) *MatchService {
	logger, _ := logtest.NewNullLogger()
	svc := NewMatchService(loader, store, store, MatchServiceConfig{}, logger)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func matchCatalog() *MockCatalogLoader {
	_, best := canadaScenario()
	return &MockCatalogLoader{catalog: &domain.Catalog{
		Source: "csv",
		Universities: []domain.University{
			best,
			{ID: "AU-001", Name: "Monash University", Country: "Australia", TotalCost: "AUD $40000-60000", Course: "Computer Science"},
			{ID: "AU-001", Name: "Monash University", Country: "Australia", TotalCost: "AUD $40000-60000", Course: "Nursing"},
			{ID: "CA-002", Name: "Brock University", Country: "Canada", TotalCost: "$25,000", IntlServices: "Orientation"},
		},
	}}
}

func TestMatchService_SavePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("stores preferences with defaults and persists matches", func(t *testing.T) {
		store := NewMockStore()
		svc := newTestMatchService(matchCatalog(), store)
		prefs, _ := canadaScenario()
		prefs.BudgetMax = 0

		results, err := svc.SavePreferences(ctx, prefs)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		saved := store.prefs["u-1"]
		assert.Equal(t, domain.DefaultBudgetMax, saved.BudgetMax)
		assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), saved.UpdatedAt)
		assert.Equal(t, results, store.matches["u-1"])
	})

	t.Run("overwrites earlier preferences", func(t *testing.T) {
		store := NewMockStore()
		svc := newTestMatchService(matchCatalog(), store)

		_, err := svc.SavePreferences(ctx, domain.UserPreferences{UserID: "u-1", Countries: []string{"Australia"}})
		require.NoError(t, err)
		_, err = svc.SavePreferences(ctx, domain.UserPreferences{UserID: "u-1", Countries: []string{"Canada"}})
		require.NoError(t, err)

		assert.Equal(t, []string{"Canada"}, store.prefs["u-1"].Countries)
		assert.Equal(t, "Canada", store.matches["u-1"][0].University.Country)
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())
		_, err := svc.SavePreferences(ctx, domain.UserPreferences{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("rejects inverted budget", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())
		_, err := svc.SavePreferences(ctx, domain.UserPreferences{UserID: "u", BudgetMin: 50000, BudgetMax: 1000})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("wraps storage failures", func(t *testing.T) {
		store := NewMockStore()
		store.saveErr = errors.New("disk full")
		svc := newTestMatchService(matchCatalog(), store)

		_, err := svc.SavePreferences(ctx, domain.UserPreferences{UserID: "u"})
		assert.ErrorIs(t, err, domain.ErrStorageFailure)
	})

	t.Run("returns fresh matches when persisting fails", func(t *testing.T) {
		store := NewMockStore()
		store.replaceErr = errors.New("locked")
		svc := newTestMatchService(matchCatalog(), store)
		prefs, _ := canadaScenario()

		results, err := svc.SavePreferences(ctx, prefs)
		require.NoError(t, err)
		assert.NotEmpty(t, results)
	})
}

func TestMatchService_ComputeMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks and deduplicates the catalog", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())
		prefs, _ := canadaScenario()

		results, err := svc.ComputeMatches(ctx, prefs)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "CA-001", results[0].University.ID)

		seen := map[string]bool{}
		for _, r := range results {
			assert.False(t, seen[r.University.DedupKey()], "duplicate %s", r.University.DedupKey())
			seen[r.University.DedupKey()] = true
		}
	})

	t.Run("empty result when no catalog is available", func(t *testing.T) {
		svc := newTestMatchService(&MockCatalogLoader{err: domain.ErrCatalogUnavailable}, NewMockStore())

		results, err := svc.ComputeMatches(ctx, domain.UserPreferences{UserID: "u"})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("does not touch the store", func(t *testing.T) {
		store := NewMockStore()
		svc := newTestMatchService(matchCatalog(), store)

		_, err := svc.ComputeMatches(ctx, domain.UserPreferences{UserID: "u"})
		require.NoError(t, err)
		assert.Empty(t, store.matches)
		assert.Empty(t, store.prefs)
	})
}

func TestMatchService_ListMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("serves stored matches", func(t *testing.T) {
		store := NewMockStore()
		store.matches["u-1"] = []domain.MatchResult{
			{University: domain.University{ID: "X", Country: "Canada"}, Score: 40},
			{University: domain.University{ID: "Y", Country: "Canada"}, Score: 80, IsFavorite: true},
		}
		svc := newTestMatchService(matchCatalog(), store)

		page, err := svc.ListMatches(ctx, "u-1", ListOptions{})
		require.NoError(t, err)
		require.Len(t, page.Matches, 2)
		assert.Equal(t, "Y", page.Matches[0].University.ID)
		assert.True(t, page.Matches[0].IsFavorite)
	})

	t.Run("computes from stored preferences when nothing is stored", func(t *testing.T) {
		store := NewMockStore()
		prefs, _ := canadaScenario()
		store.prefs["u-1"] = prefs
		store.flags["u-1"] = map[string]domain.UserFlags{"CA-002": {IsFavorite: true, IsShortlisted: true}}
		svc := newTestMatchService(matchCatalog(), store)

		page, err := svc.ListMatches(ctx, "u-1", ListOptions{Countries: []string{"canada"}})
		require.NoError(t, err)
		require.Len(t, page.Matches, 2)
		assert.Equal(t, "CA-001", page.Matches[0].University.ID)
		assert.False(t, page.Matches[0].IsFavorite)
		assert.True(t, page.Matches[1].IsFavorite)
		assert.True(t, page.Matches[1].IsShortlisted)
	})

	t.Run("computes when the store fails", func(t *testing.T) {
		store := NewMockStore()
		prefs, _ := canadaScenario()
		store.prefs["u-1"] = prefs
		store.listErr = errors.New("no such table")
		svc := newTestMatchService(matchCatalog(), store)

		page, err := svc.ListMatches(ctx, "u-1", ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("empty page without preferences", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())

		page, err := svc.ListMatches(ctx, "nobody", ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, page.Matches)
		assert.Equal(t, 0, page.Total)
	})

	t.Run("rejects blank user", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())
		_, err := svc.ListMatches(ctx, " ", ListOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestMatchService_Toggles(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	svc := newTestMatchService(matchCatalog(), store)

	on, err := svc.ToggleFavorite(ctx, "u-1", " CA-001 ")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := svc.ToggleFavorite(ctx, "u-1", "CA-001")
	require.NoError(t, err)
	assert.False(t, off)

	listed, err := svc.ToggleShortlist(ctx, "u-1", "CA-001")
	require.NoError(t, err)
	assert.True(t, listed)

	_, err = svc.ToggleShortlist(ctx, "u-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestMatchService_GetMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	prefs, _ := canadaScenario()
	store.prefs["u-1"] = prefs
	svc := newTestMatchService(matchCatalog(), store)

	got, err := svc.GetMatch(ctx, "u-1", "CA-002")
	require.NoError(t, err)
	assert.Equal(t, "Brock University", got.University.Name)

	_, err = svc.GetMatch(ctx, "u-1", "XX-404")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	_, err = svc.GetMatch(ctx, "nobody", "CA-002")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	_, err = svc.GetMatch(ctx, "u-1", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestMatchService_DashboardStats(t *testing.T) {
	ctx := context.Background()

	t.Run("counts matches and flags", func(t *testing.T) {
		store := NewMockStore()
		prefs, _ := canadaScenario()
		store.prefs["u-1"] = prefs
		store.flags["u-1"] = map[string]domain.UserFlags{
			"CA-002": {IsFavorite: true, IsShortlisted: true},
			"AU-001": {IsShortlisted: true},
			"XX-404": {IsFavorite: true},
			"CA-001": {},
		}
		svc := newTestMatchService(matchCatalog(), store)

		stats, err := svc.DashboardStats(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalMatches)
		assert.Equal(t, 1, stats.TopMatches)
		assert.Equal(t, 2, stats.Favorites)
		assert.Equal(t, 2, stats.Shortlisted)
		require.Len(t, stats.Best, 3)
		assert.Equal(t, "CA-001", stats.Best[0].University.ID)
	})

	t.Run("best is capped at five", func(t *testing.T) {
		store := NewMockStore()
		for i := 0; i < 7; i++ {
			store.matches["u-1"] = append(store.matches["u-1"], domain.MatchResult{
				University: domain.University{ID: string(rune('A' + i))},
				Score:      float64(50 + i*5),
			})
		}
		svc := newTestMatchService(matchCatalog(), store)

		stats, err := svc.DashboardStats(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, 7, stats.TotalMatches)
		assert.Equal(t, 1, stats.TopMatches, "only the 80 reaches the top band")
		require.Len(t, stats.Best, 5)
		assert.Equal(t, 80.0, stats.Best[0].Score)
	})

	t.Run("empty for a user without preferences", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())

		stats, err := svc.DashboardStats(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalMatches)
		assert.NotNil(t, stats.Best)
		assert.Empty(t, stats.Best)
	})

	t.Run("rejects blank user", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())
		_, err := svc.DashboardStats(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestMatchService_Favorites(t *testing.T) {
	ctx := context.Background()

	t.Run("details from matches then catalog", func(t *testing.T) {
		store := NewMockStore()
		store.matches["u-1"] = []domain.MatchResult{
			{University: domain.University{ID: "CA-002", Name: "Brock University"}, Score: 77.5, Reason: "Good match for your preferences"},
		}
		store.flags["u-1"] = map[string]domain.UserFlags{
			"CA-002":          {IsFavorite: true},
			"AU-001":          {IsFavorite: true, IsShortlisted: true},
			"CA-001":          {IsShortlisted: true},
			"XX-404":          {IsFavorite: true},
			"name:lost hills": {IsFavorite: true},
		}
		svc := newTestMatchService(matchCatalog(), store)

		favorites, err := svc.Favorites(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, favorites, 4)

		// ordered by name; the unresolved id has none and comes first
		assert.Equal(t, "XX-404", favorites[0].University.ID)
		assert.Equal(t, "Brock University", favorites[1].University.Name)
		assert.Equal(t, 77.5, favorites[1].Score)
		assert.Equal(t, "lost hills", favorites[2].University.Name)
		assert.Equal(t, "Monash University", favorites[3].University.Name)
		assert.Equal(t, "Computer Science", favorites[3].University.Course, "first catalog row")
		assert.True(t, favorites[3].IsShortlisted)
		for _, f := range favorites {
			assert.True(t, f.IsFavorite)
		}
	})

	t.Run("keys only when the catalog is unavailable", func(t *testing.T) {
		store := NewMockStore()
		store.flags["u-1"] = map[string]domain.UserFlags{"AU-001": {IsFavorite: true}}
		svc := newTestMatchService(&MockCatalogLoader{err: domain.ErrCatalogUnavailable}, store)

		favorites, err := svc.Favorites(ctx, "u-1")
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Equal(t, "AU-001", favorites[0].University.ID)
		assert.Empty(t, favorites[0].University.Name)
	})

	t.Run("empty without favorites", func(t *testing.T) {
		svc := newTestMatchService(matchCatalog(), NewMockStore())

		favorites, err := svc.Favorites(ctx, "u-1")
		require.NoError(t, err)
		assert.NotNil(t, favorites)
		assert.Empty(t, favorites)
	})
}
