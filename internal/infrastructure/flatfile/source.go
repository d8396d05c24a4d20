package flatfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
)

// DefaultPattern matches every CSV file in a data directory
const DefaultPattern = "*.csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Config holds configuration for the flat-file catalog source
type Config struct {
	Dirs    []string
	Pattern string
}

// Source reads the university catalog from CSV files on disk.
// It implements domain.CatalogSource.
type Source struct {
	dirs    []string
	pattern string
	logger  logrus.FieldLogger
}

// NewSource creates a CSV catalog source
func NewSource(config Config, logger logrus.FieldLogger) *Source {
	pattern := strings.TrimSpace(config.Pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Source{
		dirs:    config.Dirs,
		pattern: pattern,
		logger:  logger.WithField("source", "csv"),
	}
}

// Name identifies the source in logs and in Catalog.Source
func (s *Source) Name() string {
	return "csv"
}

// LoadUniversities reads every matching file in every configured directory.
// Files are visited in sorted order; a file that cannot be parsed is logged
// and skipped.
func (s *Source) LoadUniversities(ctx context.Context) ([]domain.University, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	universities := make([]domain.University, 0)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := s.readFile(path)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"file":  path,
				"error": err.Error(),
			}).Warn("skipping unreadable catalog file")
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"file": filepath.Base(path),
			"rows": len(rows),
		}).Debug("catalog file loaded")
		universities = append(universities, rows...)
	}

	return universities, nil
}

// files lists matching files across the configured directories
func (s *Source) files() ([]string, error) {
	var files []string
	for _, dir := range s.dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			s.logger.WithField("dir", dir).Debug("catalog directory not found")
			continue
		}

		matches, err := filepath.Glob(filepath.Join(dir, s.pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid catalog file pattern %q: %w", s.pattern, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// readFile parses one CSV file into universities. A malformed record is
// logged and skipped; the reader resumes at the next line.
func (s *Source) readFile(path string) ([]domain.University, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, utf8BOM)

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	// strict quoting so a broken field ends at its own line instead of
	// swallowing the records after it
	r.LazyQuotes = false

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := resolveColumns(headers)

	var universities []domain.University
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.logger.WithFields(logrus.Fields{
				"file":  filepath.Base(path),
				"line":  parseErr.StartLine,
				"error": parseErr.Err.Error(),
			}).Warn("skipping malformed catalog record")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if blankRecord(rec) {
			continue
		}

		var u domain.University
		for i, col := range columns {
			if col < 0 || col >= len(rec) {
				continue
			}
			fields[i].set(&u, strings.TrimSpace(rec[col]))
		}
		universities = append(universities, u)
	}

	return universities, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCoordinate returns nil for blank or non-numeric values
func parseCoordinate(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
