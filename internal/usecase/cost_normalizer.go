package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/unicounsel/backend/internal/domain"
)

// Compiled regex patterns for cost normalization
var (
	// Matches parenthesized annotations like "(International UG)"
	costAnnotationPattern = regexp.MustCompile(`\([^)]*\)`)
)

// costSentinels are values that mean "no data" (compared upper-cased)
var costSentinels = map[string]bool{
	"N/A":    true,
	"NA":     true,
	"TBD":    true,
	"TBA":    true,
	"VARIES": true,
	"-":      true,
	"":       true,
}

// costNoise strips approximation markers, currency tokens and thousands separators
var costNoise = strings.NewReplacer(
	"~", "", "≈", "",
	"$", "", "AUD", "", "USD", "", "EUR", "", "ETB", "", "Birr", "",
	",", "",
)

// ParseCost turns a free-text cost such as "AUD $40000-60000" or
// "$1800 (UG); $1200 (PG)" into a single estimate. Ranges yield their mean and
// only the first semicolon segment is read. ok is false when no number can be
// extracted; callers treat that as neutral, never as the worst case.
func ParseCost(text string) (value float64, ok bool) {
	s := strings.TrimSpace(text)
	if costSentinels[strings.ToUpper(s)] {
		return 0, false
	}

	if idx := strings.Index(s, ";"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}

	s = costAnnotationPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(costNoise.Replace(s))

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) == 2 {
			low, high := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			if low != "" && high != "" {
				lv, lok := parseFinite(low)
				hv, hok := parseFinite(high)
				if lok && hok {
					return (lv + hv) / 2, true
				}
			}
		}
	}

	return parseFinite(strings.ReplaceAll(s, " ", ""))
}

// EstimateTotalCost derives a university's yearly cost: the total estimate
// when it parses, otherwise tuition plus living cost when at least one of
// them parses (the missing side counts as zero).
func EstimateTotalCost(u domain.University) (float64, bool) {
	if total, ok := ParseCost(u.TotalCost); ok {
		return total, true
	}

	tuition, tok := ParseCost(u.TuitionFee)
	living, lok := ParseCost(u.LivingCost)
	if !tok && !lok {
		return 0, false
	}
	return tuition + living, true
}

// parseFinite parses a float, rejecting empty input, NaN and infinities
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
