package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type taxCodeRepo struct {
	db DBTX
}

// NewTaxCodeRepo creates a new PostgreSQL-backed TaxCodeRepository.
func NewTaxCodeRepo(db DBTX) port.TaxCodeRepository {
	return &taxCodeRepo{db: db}
}

func (r *taxCodeRepo) Create(ctx context.Context, tc *domain.TaxCode) error {
	now := time.Now().UTC()
	tc.CreatedAt = now
	tc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tax_codes (code, name, rate_pct, compound, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tc.Code, tc.Name, tc.RatePct, tc.Compound, tc.IsActive, tc.CreatedAt, tc.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("%w: tax code %s already exists", domain.ErrValidation, tc.Code)
		}
		return fmt.Errorf("taxCodeRepo.Create: %w", err)
	}
	return nil
}

func (r *taxCodeRepo) GetByCode(ctx context.Context, code string) (*domain.TaxCode, error) {
	var tc domain.TaxCode
	err := r.db.GetContext(ctx, &tc, "SELECT * FROM tax_codes WHERE code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("taxCodeRepo.GetByCode: %w", err)
	}
	return &tc, nil
}

func (r *taxCodeRepo) List(ctx context.Context) ([]domain.TaxCode, error) {
	var codes []domain.TaxCode
	if err := r.db.SelectContext(ctx, &codes, "SELECT * FROM tax_codes ORDER BY code"); err != nil {
		return nil, fmt.Errorf("taxCodeRepo.List: %w", err)
	}
	return codes, nil
}

func (r *taxCodeRepo) Update(ctx context.Context, tc *domain.TaxCode) error {
	tc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tax_codes SET name = $1, rate_pct = $2, compound = $3, is_active = $4, updated_at = $5
		 WHERE code = $6`,
		tc.Name, tc.RatePct, tc.Compound, tc.IsActive, tc.UpdatedAt, tc.Code)
	if err != nil {
		return fmt.Errorf("taxCodeRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *taxCodeRepo) Deactivate(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE tax_codes SET is_active = false, updated_at = NOW() WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("taxCodeRepo.Deactivate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
