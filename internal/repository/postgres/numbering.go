package postgres

import (
	"context"
	"fmt"
	"time"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type numberingService struct {
	db DBTX
}

// NewNumberingService creates a sequence-table backed NumberingService.
// The upsert increments and returns in one statement, so concurrent issuers
// can never observe the same value.
func NewNumberingService(db DBTX) port.NumberingService {
	return &numberingService{db: db}
}

func (n *numberingService) Next(ctx context.Context, kind domain.InvoiceKind) (string, error) {
	prefix := kind.NumberPrefix()
	if prefix == "" {
		return "", fmt.Errorf("%w: unknown document kind %q", domain.ErrValidation, kind)
	}

	year := time.Now().UTC().Year()
	var seq int64
	err := n.db.QueryRowxContext(ctx,
		`INSERT INTO document_sequences (kind, year, last_value)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (kind, year)
		 DO UPDATE SET last_value = document_sequences.last_value + 1
		 RETURNING last_value`,
		kind, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("numberingService.Next: %w", err)
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq), nil
}
