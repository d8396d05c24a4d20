package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
)

const universityColumns = `university_id, university_name, country, state, city, program_level, course,
	tuition_fee_annual, living_cost_annual, total_estimated_cost, scholarships, intl_services,
	official_website, image_url, latitude, longitude`

// Name identifies the store as a catalog source
func (s *Store) Name() string {
	return "database"
}

// LoadUniversities reads the whole catalog in import order.
// It implements domain.CatalogSource.
func (s *Store) LoadUniversities(ctx context.Context) ([]domain.University, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+universityColumns+` FROM universities ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query universities: %w", err)
	}
	defer rows.Close()

	universities := make([]domain.University, 0)
	for rows.Next() {
		var (
			u        domain.University
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Country, &u.State, &u.City, &u.ProgramLevel, &u.Course,
			&u.TuitionFee, &u.LivingCost, &u.TotalCost, &u.Scholarships, &u.IntlServices,
			&u.Website, &u.ImageURL, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan university: %w", err)
		}
		if lat.Valid {
			u.Latitude = &lat.Float64
		}
		if lon.Valid {
			u.Longitude = &lon.Float64
		}
		universities = append(universities, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read universities: %w", err)
	}

	return universities, nil
}

// ImportUniversities appends the rows to the catalog, or replaces the
// catalog when replace is set. It returns the number of rows written.
func (s *Store) ImportUniversities(ctx context.Context, universities []domain.University, replace bool) (int, error) {
	written := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replace {
			if _, err := tx.ExecContext(ctx, `DELETE FROM universities`); err != nil {
				return fmt.Errorf("failed to clear universities: %w", err)
			}
		}

		var last int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM universities`).Scan(&last); err != nil {
			return fmt.Errorf("failed to read catalog position: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO universities (seq, `+universityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, u := range universities {
			if _, err := stmt.ExecContext(ctx,
				last+int64(i)+1,
				u.ID, u.Name, u.Country, u.State, u.City, u.ProgramLevel, u.Course,
				u.TuitionFee, u.LivingCost, u.TotalCost, u.Scholarships, u.IntlServices,
				u.Website, u.ImageURL, nullFloat(u.Latitude), nullFloat(u.Longitude),
			); err != nil {
				return fmt.Errorf("failed to insert university %q: %w", u.Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"rows":    written,
		"replace": replace,
	}).Info("universities imported")
	return written, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
