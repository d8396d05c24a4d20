package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/internal/domain"
)

// CatalogProvider loads the university catalog from the primary source and
// falls back to the secondary one when the primary is unreachable or empty.
// The loaded catalog is kept in the injected cache until Reload is called.
type CatalogProvider struct {
	primary  domain.CatalogSource
	fallback domain.CatalogSource
	cache    domain.CatalogCache
	logger   logrus.FieldLogger
}

// NewCatalogProvider creates a provider. Either source may be nil.
func NewCatalogProvider(
	primary domain.CatalogSource,
	fallback domain.CatalogSource,
	cache domain.CatalogCache,
	logger logrus.FieldLogger,
) *CatalogProvider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CatalogProvider{
		primary:  primary,
		fallback: fallback,
		cache:    cache,
		logger:   logger.WithField("component", "catalog"),
	}
}

// Load returns the cached catalog, loading it on first use. Concurrent
// first calls may each load; the results are identical for static inputs.
func (p *CatalogProvider) Load(ctx context.Context) (*domain.Catalog, error) {
	if p.cache != nil {
		if cached, err := p.cache.Get(); err == nil && cached != nil {
			return cached, nil
		}
	}

	catalog, err := p.loadFromSources(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(catalog)
	}
	return catalog, nil
}

// Reload drops the cached catalog and loads it again
func (p *CatalogProvider) Reload(ctx context.Context) (*domain.Catalog, error) {
	if p.cache != nil {
		p.cache.Invalidate()
	}
	return p.Load(ctx)
}

// loadFromSources picks a source once per load: primary first, fallback on
// any error or an empty result.
func (p *CatalogProvider) loadFromSources(ctx context.Context) (*domain.Catalog, error) {
	var errs []error

	for _, source := range []domain.CatalogSource{p.primary, p.fallback} {
		if source == nil {
			continue
		}

		unis, err := source.LoadUniversities(ctx)
		if err == nil && len(unis) == 0 {
			err = domain.ErrCatalogEmpty
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.logger.WithFields(logrus.Fields{
				"source": source.Name(),
				"error":  err.Error(),
			}).Warn("catalog source unavailable, trying next source")
			errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
			continue
		}

		p.logger.WithFields(logrus.Fields{
			"source":       source.Name(),
			"universities": len(unis),
		}).Info("catalog loaded")

		return &domain.Catalog{Universities: unis, Source: source.Name()}, nil
	}

	if len(errs) == 0 {
		return nil, domain.ErrCatalogUnavailable
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, errors.Join(errs...))
}
