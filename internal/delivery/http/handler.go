package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
	"github.com/unicounsel/backend/internal/usecase"
)

const (
	serviceName    = "unicounsel-backend"
	serviceVersion = "1.0.0"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	matches  *usecase.MatchService
	insights *usecase.CatalogInsights
	catalog  *usecase.CatalogProvider
	logger   logrus.FieldLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	matches *usecase.MatchService,
	insights *usecase.CatalogInsights,
	catalog *usecase.CatalogProvider,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		matches:  matches,
		insights: insights,
		catalog:  catalog,
		logger:   logger.WithField("component", "http"),
	}
}

// countryList accepts either a JSON array of countries or a single string
// holding a JSON array or a comma separated list.
type countryList []string

func (l *countryList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = domain.ParseCountryList(raw)
	return nil
}

// PreferencesRequest is the onboarding payload
type PreferencesRequest struct {
	UserID           string      `json:"userId"`
	Countries        countryList `json:"countries"`
	StudyLevel       string      `json:"studyLevel"`
	Stream           string      `json:"stream"`
	BudgetMin        float64     `json:"budgetMin"`
	BudgetMax        float64     `json:"budgetMax"`
	NeedsScholarship bool        `json:"needsScholarship"`
}

func (r PreferencesRequest) toDomain(userID string) domain.UserPreferences {
	return domain.UserPreferences{
		UserID:           userID,
		Countries:        []string(r.Countries),
		StudyLevel:       r.StudyLevel,
		Stream:           r.Stream,
		BudgetMin:        r.BudgetMin,
		BudgetMax:        r.BudgetMax,
		NeedsScholarship: r.NeedsScholarship,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ComputeMatches ranks the catalog for an ad-hoc preferences payload
func (h *Handler) ComputeMatches(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	results, err := h.matches.ComputeMatches(c.Request.Context(), req.toDomain(req.UserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": results,
		"total":   len(results),
	})
}

// SavePreferences stores a user's onboarding answers and returns the recomputed matches
func (h *Handler) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := c.Param("userId")
	results, err := h.matches.SavePreferences(c.Request.Context(), req.toDomain(userID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":  userID,
		"matches": results,
		"total":   len(results),
	})
}

// GetPreferences returns a user's stored onboarding answers
func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.matches.GetPreferences(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ListMatches returns a filtered, sorted page of the user's matches.
// Query: countries (comma list), sort_by, page, per_page.
func (h *Handler) ListMatches(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		h.respondError(c, err)
		return
	}
	perPage, err := queryInt(c, "per_page", usecase.DefaultPerPage)
	if err != nil {
		h.respondError(c, err)
		return
	}

	opts := usecase.ListOptions{
		Countries: domain.ParseCountryList(c.Query("countries")),
		SortBy:    usecase.ParseSortBy(c.Query("sort_by")),
		Page:      page,
		PerPage:   perPage,
	}

	result, err := h.matches.ListMatches(c.Request.Context(), c.Param("userId"), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMatch returns the user's match for one university
func (h *Handler) GetMatch(c *gin.Context) {
	match, err := h.matches.GetMatch(c.Request.Context(), c.Param("userId"), c.Param("universityId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// ToggleFavorite flips the favorite flag on a university
func (h *Handler) ToggleFavorite(c *gin.Context) {
	universityID := c.Param("universityId")
	on, err := h.matches.ToggleFavorite(c.Request.Context(), c.Param("userId"), universityID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"universityId": strings.TrimSpace(universityID),
		"isFavorite":   on,
	})
}

// ToggleShortlist flips the shortlist flag on a university
func (h *Handler) ToggleShortlist(c *gin.Context) {
	universityID := c.Param("universityId")
	on, err := h.matches.ToggleShortlist(c.Request.Context(), c.Param("userId"), universityID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"universityId":  strings.TrimSpace(universityID),
		"isShortlisted": on,
	})
}

// Favorites lists the universities the user has favorited
func (h *Handler) Favorites(c *gin.Context) {
	favorites, err := h.matches.Favorites(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"total":     len(favorites),
	})
}

// DashboardStats returns the user's match counts and best matches
func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.matches.DashboardStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// FeeComparisonRequest selects the universities to compare
type FeeComparisonRequest struct {
	UniversityIDs []string `json:"universityIds"`
}

// CompareFees compares the normalized costs of two or more universities
func (h *Handler) CompareFees(c *gin.Context) {
	var req FeeComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comparison, err := h.insights.CompareFees(c.Request.Context(), req.UniversityIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"comparison": comparison,
		"total":      len(comparison),
	})
}

// FilterOptions returns the countries and budget bounds found in the catalog
func (h *Handler) FilterOptions(c *gin.Context) {
	opts, err := h.insights.FilterOptions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Scholarships lists the distinct scholarships found in the catalog
func (h *Handler) Scholarships(c *gin.Context) {
	summaries, err := h.insights.Scholarships(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scholarships": summaries,
		"total":        len(summaries),
	})
}

// ReloadCatalog drops the cached catalog and loads it again
func (h *Handler) ReloadCatalog(c *gin.Context) {
	catalog, err := h.catalog.Reload(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":       catalog.Source,
		"universities": len(catalog.Universities),
	})
}

// respondError maps domain errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPreferencesNotFound), errors.Is(err, domain.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogUnavailable), errors.Is(err, domain.ErrCatalogEmpty):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "University catalog temporarily unavailable"})
	default:
		h.logger.WithFields(logrus.Fields{
			"path":      c.FullPath(),
			"requestId": c.GetString(requestIDKey),
			"error":     err.Error(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidRequest, name)
	}
	return n, nil
}
