package usecase

import (
	"context"
	"sync"

	"github.com/unicounsel/backend/internal/domain"
)

// MockCatalogSource is a mock implementation of domain.CatalogSource
type MockCatalogSource struct {
	name  string
	unis  []domain.University
	err   error
	calls int
}

func (m *MockCatalogSource) Name() string { return m.name }

func (m *MockCatalogSource) LoadUniversities(ctx context.Context) ([]domain.University, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.unis, nil
}

// MockCatalogCache is a mock implementation of domain.CatalogCache
type MockCatalogCache struct {
	catalog     *domain.Catalog
	setCalls    int
	invalidated int
}

func (m *MockCatalogCache) Get() (*domain.Catalog, error) {
	if m.catalog == nil {
		return nil, domain.ErrCacheMiss
	}
	return m.catalog, nil
}

func (m *MockCatalogCache) Set(catalog *domain.Catalog) {
	m.setCalls++
	m.catalog = catalog
}

func (m *MockCatalogCache) Invalidate() {
	m.invalidated++
	m.catalog = nil
}

// MockCatalogLoader returns a fixed catalog or error
type MockCatalogLoader struct {
	catalog *domain.Catalog
	err     error
}

func (m *MockCatalogLoader) Load(ctx context.Context) (*domain.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.catalog, nil
}

// MockStore implements domain.PreferencesRepository and domain.MatchRepository
type MockStore struct {
	mu         sync.Mutex
	prefs      map[string]domain.UserPreferences
	matches    map[string][]domain.MatchResult
	flags      map[string]map[string]domain.UserFlags
	saveErr    error
	replaceErr error
	listErr    error
	getErr     error
}

func NewMockStore() *MockStore {
	return &MockStore{
		prefs:   make(map[string]domain.UserPreferences),
		matches: make(map[string][]domain.MatchResult),
		flags:   make(map[string]map[string]domain.UserFlags),
	}
}

func (m *MockStore) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.prefs[prefs.UserID] = prefs
	return nil
}

func (m *MockStore) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.prefs[userID]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	return &p, nil
}

func (m *MockStore) ReplaceMatches(ctx context.Context, userID string, results []domain.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.matches[userID] = append([]domain.MatchResult(nil), results...)
	return nil
}

func (m *MockStore) ListMatches(ctx context.Context, userID string) ([]domain.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.MatchResult(nil), m.matches[userID]...), nil
}

func (m *MockStore) UserFlags(ctx context.Context, userID string) (map[string]domain.UserFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.UserFlags)
	for k, v := range m.flags[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *MockStore) ToggleFavorite(ctx context.Context, userID, key string) (bool, error) {
	return m.toggle(userID, key, func(f *domain.UserFlags) bool {
		f.IsFavorite = !f.IsFavorite
		return f.IsFavorite
	}), nil
}

func (m *MockStore) ToggleShortlist(ctx context.Context, userID, key string) (bool, error) {
	return m.toggle(userID, key, func(f *domain.UserFlags) bool {
		f.IsShortlisted = !f.IsShortlisted
		return f.IsShortlisted
	}), nil
}

func (m *MockStore) toggle(userID, key string, flip func(*domain.UserFlags) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags[userID] == nil {
		m.flags[userID] = make(map[string]domain.UserFlags)
	}
	f := m.flags[userID][key]
	v := flip(&f)
	m.flags[userID][key] = f
	return v
}
