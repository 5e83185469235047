package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type partyRepo struct {
	db DBTX
}

// NewPartyRepo creates a new PostgreSQL-backed PartyRepository.
func NewPartyRepo(db DBTX) port.PartyRepository {
	return &partyRepo{db: db}
}

func (r *partyRepo) Create(ctx context.Context, party *domain.Party) error {
	now := time.Now().UTC()
	party.CreatedAt = now
	party.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parties (
			id, kind, name, phone, email, credit_limit, payment_terms_days,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		party.ID, party.Kind, party.Name, party.Phone, party.Email,
		party.CreditLimit, party.PaymentTermsDays,
		party.IsActive, party.CreatedAt, party.UpdatedAt)
	if err != nil {
		return fmt.Errorf("partyRepo.Create: %w", err)
	}
	return nil
}

func (r *partyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	var party domain.Party
	err := r.db.GetContext(ctx, &party, "SELECT * FROM parties WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("partyRepo.GetByID: %w", err)
	}
	return &party, nil
}

func (r *partyRepo) List(ctx context.Context, kind domain.PartyKind, offset, limit int) ([]domain.Party, int, error) {
	cond := "1=1"
	args := []interface{}{}
	if kind != "" {
		cond = "kind = $1"
		args = append(args, kind)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM parties WHERE "+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("partyRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM parties WHERE %s ORDER BY name LIMIT $%d OFFSET $%d",
		cond, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var parties []domain.Party
	if err := r.db.SelectContext(ctx, &parties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("partyRepo.List: %w", err)
	}
	return parties, total, nil
}

func (r *partyRepo) Update(ctx context.Context, party *domain.Party) error {
	party.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE parties SET
			name = $1, phone = $2, email = $3, credit_limit = $4,
			payment_terms_days = $5, is_active = $6, updated_at = $7
		 WHERE id = $8`,
		party.Name, party.Phone, party.Email, party.CreditLimit,
		party.PaymentTermsDays, party.IsActive, party.UpdatedAt,
		party.ID)
	if err != nil {
		return fmt.Errorf("partyRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
