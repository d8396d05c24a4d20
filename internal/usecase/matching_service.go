package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
)

// Factor weights; they sum to 1.0 so a perfect row scores 100
const (
	weightCountry      = 0.25
	weightBudget       = 0.25
	weightLevel        = 0.15
	weightStream       = 0.15
	weightScholarships = 0.10
	weightServices     = 0.10
)

// Per-factor sub-scores on a 0-100 scale
const (
	fullMatch           = 100.0
	neutralPreference   = 70.0 // user stated no preference
	neutralMissingCost  = 50.0 // university cost unknown
	countryMismatch     = 20.0
	budgetBelowMin      = 80.0
	budgetSlightlyOver  = 60.0
	budgetFarOver       = 20.0
	streamMismatch      = 40.0
	scholarshipNoNeed   = 50.0
	scholarshipNoneHeld = 10.0

	budgetOverrunFactor = 1.2 // up to 20% over budget still earns partial credit
	maxScore            = 100.0
)

// Reason thresholds
const (
	excellentThreshold = 80.0
	goodThreshold      = 60.0
)

// DefaultMinScore is the cutoff below which a row is not returned or stored
const DefaultMinScore = 20.0

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinScore           float64
	EnableDebugLogging bool
}

// MatchingService scores universities against a user's preferences and
// aggregates the catalog into a ranked, deduplicated match list.
// It holds no mutable state; every call is a pure computation.
type MatchingService struct {
	minScore           float64
	enableDebugLogging bool
	logger             logrus.FieldLogger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger logrus.FieldLogger) *MatchingService {
	minScore := config.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &MatchingService{
		minScore:           minScore,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger.WithField("component", "matcher"),
	}
}

// MinScore returns the inclusion cutoff applied by ComputeMatches
func (s *MatchingService) MinScore() float64 {
	return s.minScore
}

// factorScores holds the weighted contribution of each factor
type factorScores struct {
	Country      float64
	Budget       float64
	Level        float64
	Stream       float64
	Scholarships float64
	Services     float64

	countryMatched bool
}

// total sums the contributions and clamps the result to 100. The sum is
// clamped rather than renormalized so relative rankings are preserved.
func (f factorScores) total() float64 {
	sum := f.Country + f.Budget + f.Level + f.Stream + f.Scholarships + f.Services
	return math.Min(sum, maxScore)
}

// Score computes the 0-100 compatibility of one university row with the
// user's preferences, plus a short human-readable reason.
func (s *MatchingService) Score(prefs domain.UserPreferences, u domain.University) (float64, string) {
	factors := scoreFactors(prefs, u)
	score := factors.total()
	return score, matchReason(score, factors.countryMatched, u.Country)
}

// scoreFactors evaluates the six factors independently
func scoreFactors(prefs domain.UserPreferences, u domain.University) factorScores {
	var f factorScores

	// Country
	switch {
	case len(nonBlank(prefs.Countries)) == 0:
		f.Country = neutralPreference * weightCountry
	case countryMatches(prefs.Countries, u.Country):
		f.Country = fullMatch * weightCountry
		f.countryMatched = true
	default:
		f.Country = countryMismatch * weightCountry
	}

	// Budget
	f.Budget = budgetSubScore(prefs, u) * weightBudget

	// Study level: either the declared program level or the course name may carry it
	level := strings.ToLower(strings.TrimSpace(prefs.StudyLevel))
	if level != "" && (containsFold(u.ProgramLevel, level) || containsFold(u.Course, level)) {
		f.Level = fullMatch * weightLevel
	} else {
		f.Level = neutralPreference * weightLevel
	}

	// Field / stream
	stream := strings.ToLower(strings.TrimSpace(prefs.Stream))
	switch {
	case stream == "":
		f.Stream = neutralPreference * weightStream
	case containsFold(u.Course, stream):
		f.Stream = fullMatch * weightStream
	default:
		f.Stream = streamMismatch * weightStream
	}

	// Scholarships
	hasScholarships := strings.TrimSpace(u.Scholarships) != ""
	switch {
	case prefs.NeedsScholarship && hasScholarships:
		f.Scholarships = fullMatch * weightScholarships
	case hasScholarships:
		f.Scholarships = scholarshipNoNeed * weightScholarships
	case prefs.NeedsScholarship:
		f.Scholarships = scholarshipNoneHeld * weightScholarships
	}

	// International services
	if u.HasIntlServices() {
		f.Services = fullMatch * weightServices
	}

	return f
}

// budgetSubScore compares the derived yearly cost to the user's budget range
func budgetSubScore(prefs domain.UserPreferences, u domain.University) float64 {
	cost, ok := EstimateTotalCost(u)
	if !ok {
		return neutralMissingCost
	}

	budgetMin := prefs.BudgetMin
	budgetMax := prefs.BudgetMax
	if budgetMax <= 0 {
		budgetMax = domain.DefaultBudgetMax
	}

	switch {
	case cost >= budgetMin && cost <= budgetMax:
		return fullMatch
	case cost < budgetMin:
		return budgetBelowMin
	case cost <= budgetMax*budgetOverrunFactor:
		return budgetSlightlyOver
	default:
		return budgetFarOver
	}
}

// countryMatches reports whether the university country equals, contains or
// is contained in any preferred country, ignoring case ("USA" vs "United States of America (USA)").
func countryMatches(preferred []string, country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" {
		return false
	}
	for _, p := range nonBlank(preferred) {
		p = strings.ToLower(p)
		if c == p || strings.Contains(p, c) || strings.Contains(c, p) {
			return true
		}
	}
	return false
}

// matchReason builds the qualitative label for a score
func matchReason(score float64, countryMatched bool, country string) string {
	var reason string
	switch {
	case score >= excellentThreshold:
		reason = "Excellent match for your profile"
	case score >= goodThreshold:
		reason = "Good match for your preferences"
	default:
		reason = "Fair match"
	}

	if countryMatched {
		reason += fmt.Sprintf("; Located in your preferred country: %s", strings.TrimSpace(country))
	}
	return reason
}

// ComputeMatches scores every catalog row, drops rows below the minimum
// score, keeps the best-scoring row per university and returns the result
// ordered by score descending. Rows with equal scores keep catalog order.
func (s *MatchingService) ComputeMatches(prefs domain.UserPreferences, catalog []domain.University) []domain.MatchResult {
	results := make([]domain.MatchResult, 0)
	index := make(map[string]int)

	for _, u := range catalog {
		raw, reason := s.Score(prefs, u)
		score := roundScore(raw)

		if s.enableDebugLogging {
			s.logger.WithFields(logrus.Fields{
				"university": u.Name,
				"course":     u.Course,
				"score":      score,
			}).Debug("scored university")
		}

		if score < s.minScore {
			continue
		}

		key := u.DedupKey()
		if i, seen := index[key]; seen {
			if score > results[i].Score {
				results[i] = domain.MatchResult{University: u, Score: score, Reason: reason}
			}
			continue
		}

		index[key] = len(results)
		results = append(results, domain.MatchResult{University: u, Score: score, Reason: reason})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if s.enableDebugLogging {
		s.logger.WithFields(logrus.Fields{
			"catalogRows": len(catalog),
			"matches":     len(results),
			"minScore":    s.minScore,
		}).Debug("computed matches")
	}

	return results
}

// roundScore rounds to two decimals
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// containsFold reports whether needle (already lower-cased) occurs in s ignoring case
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
