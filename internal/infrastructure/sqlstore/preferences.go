package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unicounsel/backend/internal/domain"
)

// SavePreferences upserts the user's preferences
func (s *Store) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	countries := prefs.Countries
	if countries == nil {
		countries = []string{}
	}
	encoded, err := json.Marshal(countries)
	if err != nil {
		return fmt.Errorf("failed to encode countries: %w", err)
	}

	updatedAt := prefs.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_preferences (user_id, countries, study_level, stream, budget_min, budget_max, needs_scholarship, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			countries = excluded.countries,
			study_level = excluded.study_level,
			stream = excluded.stream,
			budget_min = excluded.budget_min,
			budget_max = excluded.budget_max,
			needs_scholarship = excluded.needs_scholarship,
			updated_at = excluded.updated_at`),
		prefs.UserID, string(encoded), prefs.StudyLevel, prefs.Stream,
		prefs.BudgetMin, prefs.BudgetMax, prefs.NeedsScholarship, timestamp(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetPreferences returns domain.ErrPreferencesNotFound when the user has none
func (s *Store) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	var (
		prefs     = domain.UserPreferences{UserID: userID}
		countries string
		updatedAt string
	)

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT countries, study_level, stream, budget_min, budget_max, needs_scholarship, updated_at
		FROM user_preferences WHERE user_id = ?`), userID,
	).Scan(&countries, &prefs.StudyLevel, &prefs.Stream, &prefs.BudgetMin, &prefs.BudgetMax, &prefs.NeedsScholarship, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs.Countries = domain.ParseCountryList(countries)
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		prefs.UpdatedAt = t
	}
	return &prefs, nil
}
