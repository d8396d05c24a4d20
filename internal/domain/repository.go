package domain

import "context"

// CatalogSource produces university rows from one backing store
type CatalogSource interface {
	Name() string
	LoadUniversities(ctx context.Context) ([]University, error)
}

// CatalogCache holds the loaded catalog for the lifetime of its owner
type CatalogCache interface {
	Get() (*Catalog, error)
	Set(catalog *Catalog)
	Invalidate()
}

// PreferencesRepository persists onboarding preferences (upsert per user)
type PreferencesRepository interface {
	SavePreferences(ctx context.Context, prefs UserPreferences) error
	GetPreferences(ctx context.Context, userID string) (*UserPreferences, error)
}

// MatchRepository persists computed matches and per-user university flags
type MatchRepository interface {
	// ReplaceMatches drops every stored match for the user and stores results
	ReplaceMatches(ctx context.Context, userID string, results []MatchResult) error
	ListMatches(ctx context.Context, userID string) ([]MatchResult, error)
	UserFlags(ctx context.Context, userID string) (map[string]UserFlags, error)
	ToggleFavorite(ctx context.Context, userID, universityKey string) (bool, error)
	ToggleShortlist(ctx context.Context, userID, universityKey string) (bool, error)
}
