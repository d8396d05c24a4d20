package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogEmpty is returned by a catalog source that has no rows
	ErrCatalogEmpty = errors.New("catalog source is empty")

	// ErrCatalogUnavailable is returned when neither catalog source can be loaded
	ErrCatalogUnavailable = errors.New("university catalog unavailable")

	// ErrPreferencesNotFound is returned when a user has not completed onboarding
	ErrPreferencesNotFound = errors.New("preferences not found")

	// ErrMatchNotFound is returned when a user has no match for a university
	ErrMatchNotFound = errors.New("match not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStorageFailure wraps failures of the structured store
	ErrStorageFailure = errors.New("storage operation failed")
)
