package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/unicounsel/backend/internal/domain"
)

// ReplaceMatches swaps the user's stored match set for results in one
// transaction. Favorite and shortlist flags live in their own table and
// survive the swap.
func (s *Store) ReplaceMatches(ctx context.Context, userID string, results []domain.MatchResult) error {
	createdAt := timestamp(s.now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM university_matches WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to clear matches: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(`
			INSERT INTO university_matches (user_id, university_key, ordinal, university_json, match_score, match_reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, university_key) DO NOTHING`))
		if err != nil {
			return fmt.Errorf("failed to prepare match insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range results {
			snapshot, err := json.Marshal(r.University)
			if err != nil {
				return fmt.Errorf("failed to encode university: %w", err)
			}
			if _, err := stmt.ExecContext(ctx,
				userID, r.University.DedupKey(), i, string(snapshot), r.Score, r.Reason, createdAt,
			); err != nil {
				return fmt.Errorf("failed to insert match: %w", err)
			}
		}
		return nil
	})
}

// ListMatches returns the stored matches, best first, with flags applied
func (s *Store) ListMatches(ctx context.Context, userID string) ([]domain.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT m.university_json, m.match_score, m.match_reason,
			COALESCE(f.is_favorite, FALSE), COALESCE(f.is_shortlisted, FALSE)
		FROM university_matches m
		LEFT JOIN user_university_flags f
			ON f.user_id = m.user_id AND f.university_key = m.university_key
		WHERE m.user_id = ?
		ORDER BY m.match_score DESC, m.ordinal ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	results := make([]domain.MatchResult, 0)
	for rows.Next() {
		var (
			r        domain.MatchResult
			snapshot string
		)
		if err := rows.Scan(&snapshot, &r.Score, &r.Reason, &r.IsFavorite, &r.IsShortlisted); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &r.University); err != nil {
			return nil, fmt.Errorf("failed to decode university: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}

	return results, nil
}

// UserFlags returns the user's favorite/shortlist flags keyed by university key
func (s *Store) UserFlags(ctx context.Context, userID string) (map[string]domain.UserFlags, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT university_key, is_favorite, is_shortlisted
		FROM user_university_flags WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flags: %w", err)
	}
	defer rows.Close()

	flags := make(map[string]domain.UserFlags)
	for rows.Next() {
		var (
			key string
			f   domain.UserFlags
		)
		if err := rows.Scan(&key, &f.IsFavorite, &f.IsShortlisted); err != nil {
			return nil, fmt.Errorf("failed to scan flags: %w", err)
		}
		flags[key] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}
	return flags, nil
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *Store) ToggleFavorite(ctx context.Context, userID, universityKey string) (bool, error) {
	return s.toggle(ctx, userID, universityKey, "is_favorite")
}

// ToggleShortlist flips the shortlist flag and returns the new value
func (s *Store) ToggleShortlist(ctx context.Context, userID, universityKey string) (bool, error) {
	return s.toggle(ctx, userID, universityKey, "is_shortlisted")
}

// toggle upserts the flag row; column is one of the two constant flag names
func (s *Store) toggle(ctx context.Context, userID, universityKey, column string) (bool, error) {
	insertFavorite, insertShortlist := column == "is_favorite", column == "is_shortlisted"

	var value bool
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO user_university_flags (user_id, university_key, is_favorite, is_shortlisted, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, university_key) DO UPDATE SET
			`+column+` = NOT user_university_flags.`+column+`,
			updated_at = excluded.updated_at
		RETURNING `+column),
		userID, universityKey, insertFavorite, insertShortlist, timestamp(s.now()),
	).Scan(&value)
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", column, err)
	}
	return value, nil
}
