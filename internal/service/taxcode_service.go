package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// TaxCodeService manages tax code configuration. Every write invalidates
// the read-through cache before returning, keeping pricing lookups exact.
type TaxCodeService interface {
	Create(ctx context.Context, tc *domain.TaxCode) error
	Update(ctx context.Context, tc *domain.TaxCode) error
	Deactivate(ctx context.Context, code string) error
	List(ctx context.Context) ([]domain.TaxCode, error)
}

type taxCodeService struct {
	repo  port.TaxCodeRepository
	cache port.TaxCodeProvider
}

// NewTaxCodeService creates a new TaxCodeService.
func NewTaxCodeService(repo port.TaxCodeRepository, cache port.TaxCodeProvider) TaxCodeService {
	return &taxCodeService{repo: repo, cache: cache}
}

func validateTaxCode(tc *domain.TaxCode) error {
	if tc.Code == "" {
		return fmt.Errorf("%w: tax code is required", domain.ErrValidation)
	}
	if tc.RatePct.IsNegative() || tc.RatePct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: tax rate must be within [0,100]", domain.ErrValidation)
	}
	return nil
}

func (s *taxCodeService) Create(ctx context.Context, tc *domain.TaxCode) error {
	if err := validateTaxCode(tc); err != nil {
		return err
	}
	tc.IsActive = true
	if err := s.repo.Create(ctx, tc); err != nil {
		return err
	}
	s.cache.Invalidate(tc.Code)
	return nil
}

func (s *taxCodeService) Update(ctx context.Context, tc *domain.TaxCode) error {
	if err := validateTaxCode(tc); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, tc); err != nil {
		return err
	}
	s.cache.Invalidate(tc.Code)
	return nil
}

func (s *taxCodeService) Deactivate(ctx context.Context, code string) error {
	if err := s.repo.Deactivate(ctx, code); err != nil {
		return err
	}
	s.cache.Invalidate(code)
	return nil
}

func (s *taxCodeService) List(ctx context.Context) ([]domain.TaxCode, error) {
	return s.repo.List(ctx)
}
