package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
)

// MatchServiceConfig holds configuration for the match service
type MatchServiceConfig struct {
	MinScore           float64
	EnableDebugLogging bool
}

// MatchService ties the catalog, the matcher and the stores together.
// Flow: preferences -> catalog -> score/aggregate -> persist -> present
type MatchService struct {
	catalog         CatalogLoader
	preferences     domain.PreferencesRepository
	matches         domain.MatchRepository
	matchingService *MatchingService
	logger          logrus.FieldLogger
	now             func() time.Time
}

// NewMatchService creates a new match service with dependencies
func NewMatchService(
	catalog CatalogLoader,
	preferences domain.PreferencesRepository,
	matches domain.MatchRepository,
	config MatchServiceConfig,
	logger logrus.FieldLogger,
) *MatchService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	matchingService := NewMatchingService(MatchConfig{
		MinScore:           config.MinScore,
		EnableDebugLogging: config.EnableDebugLogging,
	}, logger)

	return &MatchService{
		catalog:         catalog,
		preferences:     preferences,
		matches:         matches,
		matchingService: matchingService,
		logger:          logger.WithField("component", "matches"),
		now:             time.Now,
	}
}

// SavePreferences upserts a user's onboarding answers and recomputes their
// stored matches.
func (s *MatchService) SavePreferences(ctx context.Context, prefs domain.UserPreferences) ([]domain.MatchResult, error) {
	if strings.TrimSpace(prefs.UserID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	prefs = prefs.WithDefaults()
	if prefs.BudgetMin > prefs.BudgetMax {
		return nil, fmt.Errorf("%w: budget minimum exceeds maximum", domain.ErrInvalidRequest)
	}
	prefs.UpdatedAt = s.now().UTC()

	if err := s.preferences.SavePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("%w: save preferences: %v", domain.ErrStorageFailure, err)
	}

	return s.RecomputeMatches(ctx, prefs)
}

// GetPreferences returns the user's stored onboarding answers
func (s *MatchService) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.preferences.GetPreferences(ctx, userID)
}

// RecomputeMatches computes fresh matches and replaces the user's stored
// set. A storage failure is logged; the fresh results are still returned.
func (s *MatchService) RecomputeMatches(ctx context.Context, prefs domain.UserPreferences) ([]domain.MatchResult, error) {
	results, err := s.ComputeMatches(ctx, prefs)
	if err != nil {
		return nil, err
	}

	if err := s.matches.ReplaceMatches(ctx, prefs.UserID, results); err != nil {
		s.logger.WithFields(logrus.Fields{
			"userId": prefs.UserID,
			"error":  err.Error(),
		}).Warn("failed to persist matches")
		return results, nil
	}

	s.logger.WithFields(logrus.Fields{
		"userId":  prefs.UserID,
		"matches": len(results),
	}).Info("matches recomputed")
	return results, nil
}

// ComputeMatches ranks the catalog for the given preferences without
// touching any store. When no catalog source is available the result is
// empty rather than an error.
func (s *MatchService) ComputeMatches(ctx context.Context, prefs domain.UserPreferences) ([]domain.MatchResult, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WithField("error", err.Error()).Error("no catalog source available, returning no matches")
		return []domain.MatchResult{}, nil
	}

	return s.matchingService.ComputeMatches(prefs.WithDefaults(), catalog.Universities), nil
}

// ListMatches returns a page of the user's matches. Stored matches are used
// when present; otherwise matches are computed from the stored preferences
// and annotated with the user's favorite and shortlist flags.
func (s *MatchService) ListMatches(ctx context.Context, userID string, opts ListOptions) (domain.MatchPage, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.MatchPage{}, domain.ErrInvalidRequest
	}

	matches, err := s.userMatches(ctx, userID)
	if err != nil {
		return domain.MatchPage{}, err
	}
	return PresentMatches(matches, opts), nil
}

// GetMatch returns the user's match for one university
func (s *MatchService) GetMatch(ctx context.Context, userID, universityKey string) (*domain.MatchResult, error) {
	universityKey = strings.TrimSpace(universityKey)
	if strings.TrimSpace(userID) == "" || universityKey == "" {
		return nil, domain.ErrInvalidRequest
	}

	matches, err := s.userMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].University.DedupKey() == universityKey {
			return &matches[i], nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

// userMatches returns stored matches, or fresh ones when none are stored
func (s *MatchService) userMatches(ctx context.Context, userID string) ([]domain.MatchResult, error) {
	stored, err := s.matches.ListMatches(ctx, userID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"userId": userID,
			"error":  err.Error(),
		}).Warn("stored matches unavailable, computing fresh")
	}
	if err == nil && len(stored) > 0 {
		return stored, nil
	}

	prefs, err := s.preferences.GetPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferencesNotFound) {
			s.logger.WithFields(logrus.Fields{
				"userId": userID,
				"error":  err.Error(),
			}).Warn("failed to read preferences")
		}
		return nil, nil
	}

	fresh, err := s.ComputeMatches(ctx, *prefs)
	if err != nil {
		return nil, err
	}
	s.applyFlags(ctx, userID, fresh)
	return fresh, nil
}

// applyFlags marks favorites and shortlisted rows; failures leave flags unset
func (s *MatchService) applyFlags(ctx context.Context, userID string, results []domain.MatchResult) {
	flags, err := s.matches.UserFlags(ctx, userID)
	if err != nil {
		s.logger.WithField("error", err.Error()).Debug("user flags unavailable")
		return
	}
	for i := range results {
		if f, ok := flags[results[i].University.DedupKey()]; ok {
			results[i].IsFavorite = f.IsFavorite
			results[i].IsShortlisted = f.IsShortlisted
		}
	}
}

// Dashboard limits
const (
	TopMatchScore      = 80.0
	dashboardBestCount = 5
)

// DashboardStats counts the user's matches, top matches (score of at least
// TopMatchScore), favorites and shortlisted universities, and returns the
// best few matches.
func (s *MatchService) DashboardStats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	matches, err := s.userMatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalMatches: len(matches),
		Best:         PresentMatches(matches, ListOptions{PerPage: dashboardBestCount}).Matches,
	}
	for _, m := range matches {
		if m.Score >= TopMatchScore {
			stats.TopMatches++
		}
	}

	flags, err := s.matches.UserFlags(ctx, userID)
	if err != nil {
		s.logger.WithField("error", err.Error()).Debug("user flags unavailable")
	}
	for _, f := range flags {
		if f.IsFavorite {
			stats.Favorites++
		}
		if f.IsShortlisted {
			stats.Shortlisted++
		}
	}
	return stats, nil
}

// Favorites returns the user's favorited universities ordered by name. Details
// come from the user's matches when the university is among them, otherwise
// from the catalog. A favorite found in neither is returned with its key only.
func (s *MatchService) Favorites(ctx context.Context, userID string) ([]domain.MatchResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	flags, err := s.matches.UserFlags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load flags: %v", domain.ErrStorageFailure, err)
	}

	favorites := make([]domain.MatchResult, 0)
	for key, f := range flags {
		if f.IsFavorite {
			favorites = append(favorites, domain.MatchResult{
				University:    universityFromKey(key),
				IsFavorite:    true,
				IsShortlisted: f.IsShortlisted,
			})
		}
	}
	if len(favorites) == 0 {
		return favorites, nil
	}

	matches, err := s.userMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := make(map[string]domain.MatchResult, len(matches))
	for _, m := range matches {
		matched[m.University.DedupKey()] = m
	}

	var catalogRows map[string]domain.University
	if catalog, err := s.catalog.Load(ctx); err == nil {
		catalogRows = universitiesByKey(catalog.Universities)
	} else {
		s.logger.WithField("error", err.Error()).Warn("catalog unavailable, favorites listed without details")
	}

	for i := range favorites {
		key := favorites[i].University.DedupKey()
		if m, ok := matched[key]; ok {
			favorites[i].University = m.University
			favorites[i].Score = m.Score
			favorites[i].Reason = m.Reason
		} else if u, ok := catalogRows[key]; ok {
			favorites[i].University = u
		}
	}

	sort.SliceStable(favorites, func(i, j int) bool {
		a, b := favorites[i].University, favorites[j].University
		if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
			return an < bn
		}
		return a.DedupKey() < b.DedupKey()
	})
	return favorites, nil
}

// universityFromKey builds the minimal university a key refers to
func universityFromKey(key string) domain.University {
	if name, ok := strings.CutPrefix(key, domain.NameKeyPrefix); ok {
		return domain.University{Name: name}
	}
	return domain.University{ID: key}
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *MatchService) ToggleFavorite(ctx context.Context, userID, universityKey string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(universityKey) == "" {
		return false, domain.ErrInvalidRequest
	}
	return s.matches.ToggleFavorite(ctx, userID, strings.TrimSpace(universityKey))
}

// ToggleShortlist flips the shortlist flag and returns the new value
func (s *MatchService) ToggleShortlist(ctx context.Context, userID, universityKey string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(universityKey) == "" {
		return false, domain.ErrInvalidRequest
	}
	return s.matches.ToggleShortlist(ctx, userID, strings.TrimSpace(universityKey))
}
