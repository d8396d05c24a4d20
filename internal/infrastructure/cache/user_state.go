package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/unicounsel/backend/internal/domain"
)

const (
	preferencesPrefix = "prefs:"
	matchesPrefix     = "matches:"
	flagsPrefix       = "flags:"
)

// UserStateStore keeps preferences, matches and flags in process memory.
// It implements domain.PreferencesRepository and domain.MatchRepository and
// stands in for the structured store when the database cannot be reached.
// Nothing expires and nothing survives a restart.
type UserStateStore struct {
	mu    sync.Mutex
	store *cache.Cache
}

// NewUserStateStore creates an empty in-memory user state store
func NewUserStateStore() *UserStateStore {
	return &UserStateStore{store: cache.New(cache.NoExpiration, 0)}
}

// SavePreferences replaces the user's preferences
func (s *UserStateStore) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	prefs.Countries = append([]string(nil), prefs.Countries...)
	s.store.SetDefault(preferencesPrefix+prefs.UserID, prefs)
	return nil
}

// GetPreferences returns domain.ErrPreferencesNotFound when the user has none
func (s *UserStateStore) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	v, found := s.store.Get(preferencesPrefix + userID)
	if !found {
		return nil, domain.ErrPreferencesNotFound
	}
	prefs := v.(domain.UserPreferences)
	prefs.Countries = append([]string(nil), prefs.Countries...)
	return &prefs, nil
}

// ReplaceMatches swaps the user's match set; flags are kept
func (s *UserStateStore) ReplaceMatches(ctx context.Context, userID string, results []domain.MatchResult) error {
	stored := make([]domain.MatchResult, len(results))
	for i, r := range results {
		r.IsFavorite, r.IsShortlisted = false, false
		stored[i] = r
	}
	s.store.SetDefault(matchesPrefix+userID, stored)
	return nil
}

// ListMatches returns the stored matches, best first, with flags applied
func (s *UserStateStore) ListMatches(ctx context.Context, userID string) ([]domain.MatchResult, error) {
	results := make([]domain.MatchResult, 0)
	if v, found := s.store.Get(matchesPrefix + userID); found {
		results = append(results, v.([]domain.MatchResult)...)
	}

	flags, _ := s.UserFlags(ctx, userID)
	for i := range results {
		f := flags[results[i].University.DedupKey()]
		results[i].IsFavorite, results[i].IsShortlisted = f.IsFavorite, f.IsShortlisted
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// UserFlags returns a copy of the user's flags keyed by university key
func (s *UserStateStore) UserFlags(ctx context.Context, userID string) (map[string]domain.UserFlags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.UserFlags)
	for k, v := range s.flags(userID) {
		out[k] = v
	}
	return out, nil
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *UserStateStore) ToggleFavorite(ctx context.Context, userID, universityKey string) (bool, error) {
	return s.toggle(userID, universityKey, func(f *domain.UserFlags) bool {
		f.IsFavorite = !f.IsFavorite
		return f.IsFavorite
	}), nil
}

// ToggleShortlist flips the shortlist flag and returns the new value
func (s *UserStateStore) ToggleShortlist(ctx context.Context, userID, universityKey string) (bool, error) {
	return s.toggle(userID, universityKey, func(f *domain.UserFlags) bool {
		f.IsShortlisted = !f.IsShortlisted
		return f.IsShortlisted
	}), nil
}

// toggle does a read-modify-write of one flag under the lock. The stored map
// is copied so readers holding an older map never see it change.
func (s *UserStateStore) toggle(userID, universityKey string, flip func(*domain.UserFlags) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.flags(userID)
	next := make(map[string]domain.UserFlags, len(current)+1)
	for k, v := range current {
		next[k] = v
	}

	f := next[universityKey]
	value := flip(&f)
	next[universityKey] = f
	s.store.SetDefault(flagsPrefix+userID, next)
	return value
}

// flags must be called with mu held
func (s *UserStateStore) flags(userID string) map[string]domain.UserFlags {
	if v, found := s.store.Get(flagsPrefix + userID); found {
		return v.(map[string]domain.UserFlags)
	}
	return nil
}
