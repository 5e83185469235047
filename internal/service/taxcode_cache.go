package service

import (
	"context"
	"sync"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// TaxCodeCache is a read-through cache over the tax code repository. Every
// configuration write invalidates its code synchronously, so there is no
// TTL and no stale window. Safe for concurrent use.
type TaxCodeCache struct {
	mu     sync.RWMutex
	byCode map[string]*domain.TaxCode
	repo   port.TaxCodeRepository
}

// NewTaxCodeCache creates an empty cache over the repository.
func NewTaxCodeCache(repo port.TaxCodeRepository) *TaxCodeCache {
	return &TaxCodeCache{
		byCode: make(map[string]*domain.TaxCode),
		repo:   repo,
	}
}

// Get returns the tax code, loading it from the repository on a miss.
// Inactive codes resolve as domain.ErrNotFound.
func (c *TaxCodeCache) Get(ctx context.Context, code string) (*domain.TaxCode, error) {
	c.mu.RLock()
	tc, ok := c.byCode[code]
	c.mu.RUnlock()
	if ok {
		return tc, nil
	}

	tc, err := c.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !tc.IsActive {
		return nil, domain.ErrNotFound
	}

	c.mu.Lock()
	c.byCode[code] = tc
	c.mu.Unlock()
	return tc, nil
}

// Invalidate drops the cached entry for the code. Called synchronously by
// every write path before it returns.
func (c *TaxCodeCache) Invalidate(code string) {
	c.mu.Lock()
	delete(c.byCode, code)
	c.mu.Unlock()
}
