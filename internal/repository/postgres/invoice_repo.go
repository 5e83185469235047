package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type invoiceRepo struct {
	db DBTX
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db DBTX) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceInsert = `INSERT INTO invoices (
	id, number, kind, status, payment_status,
	customer_id, supplier_id, original_invoice_id, adjustment_account,
	subtotal, discount_total, tax_total, grand_total, paid_amount,
	notes, created_by, version, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, $8, $9,
	$10, $11, $12, $13, $14,
	$15, $16, $17, $18, $19
)`

const lineInsert = `INSERT INTO invoice_lines (
	id, invoice_id, line_no, item_id, warehouse, batch_no,
	quantity, unit_price,
	discount1_pct, discount1_fixed, discount2_pct, discount2_fixed,
	tax_codes, tax_inclusive,
	subtotal, discount1_amount, discount2_amount, taxable_amount, tax_amount, line_total
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8,
	$9, $10, $11, $12,
	$13, $14,
	$15, $16, $17, $18, $19, $20
)`

func (r *invoiceRepo) insertLines(ctx context.Context, inv *domain.Invoice) error {
	for i := range inv.Lines {
		l := &inv.Lines[i]
		l.InvoiceID = inv.ID
		l.LineNo = i + 1
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		_, err := r.db.ExecContext(ctx, lineInsert,
			l.ID, l.InvoiceID, l.LineNo, l.ItemID, l.Warehouse, l.BatchNo,
			l.Quantity, l.UnitPrice,
			l.Discount1Pct, l.Discount1Fixed, l.Discount2Pct, l.Discount2Fixed,
			l.TaxCodes, l.TaxInclusive,
			l.Subtotal, l.Discount1Amount, l.Discount2Amount, l.TaxableAmount, l.TaxAmount, l.LineTotal)
		if err != nil {
			return fmt.Errorf("invoiceRepo.insertLines: %w", err)
		}
	}
	return nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	inv.Version = 1

	_, err := r.db.ExecContext(ctx, invoiceInsert,
		inv.ID, inv.Number, inv.Kind, inv.Status, inv.PaymentStatus,
		inv.CustomerID, inv.SupplierID, inv.OriginalInvoiceID, inv.AdjustmentAccount,
		inv.Subtotal, inv.DiscountTotal, inv.TaxTotal, inv.GrandTotal, inv.PaidAmount,
		inv.Notes, inv.CreatedBy, inv.Version, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "number") {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return r.insertLines(ctx, inv)
}

func (r *invoiceRepo) loadLines(ctx context.Context, inv *domain.Invoice) error {
	var lines []domain.InvoiceLine
	err := r.db.SelectContext(ctx, &lines,
		"SELECT * FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_no", inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.loadLines: %w", err)
	}
	inv.Lines = lines
	return nil
}

func (r *invoiceRepo) getOne(ctx context.Context, query string, arg interface{}) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.get: %w", err)
	}
	if err := r.loadLines(ctx, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return r.getOne(ctx, "SELECT * FROM invoices WHERE id = $1", id)
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getOne(ctx, "SELECT * FROM invoices WHERE number = $1", number)
}

func (r *invoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return r.getOne(ctx, "SELECT * FROM invoices WHERE id = $1 FOR UPDATE", id)
}

func (r *invoiceRepo) List(ctx context.Context, filter port.ListInvoicesFilter, offset, limit int) ([]domain.Invoice, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Kind != "" {
		where = append(where, "kind = "+arg(filter.Kind))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		where = append(where, "payment_status = "+arg(filter.PaymentStatus))
	}
	if filter.PartyID != nil {
		where = append(where, "(customer_id = "+arg(*filter.PartyID)+" OR supplier_id = "+arg(*filter.PartyID)+")")
	}
	if filter.Number != "" {
		where = append(where, "number = "+arg(filter.Number))
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE "+cond, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM invoices WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s",
		cond, arg(limit), arg(offset))
	var invs []domain.Invoice
	if err := r.db.SelectContext(ctx, &invs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invs, total, nil
}

func (r *invoiceRepo) ListReturnsByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Invoice, error) {
	var invs []domain.Invoice
	err := r.db.SelectContext(ctx, &invs,
		"SELECT * FROM invoices WHERE original_invoice_id = $1 ORDER BY created_at", originalID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListReturnsByOriginal: %w", err)
	}
	for i := range invs {
		if err := r.loadLines(ctx, &invs[i]); err != nil {
			return nil, err
		}
	}
	return invs, nil
}

func (r *invoiceRepo) UpdateDraft(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			adjustment_account = $1, subtotal = $2, discount_total = $3,
			tax_total = $4, grand_total = $5, notes = $6, updated_at = $7
		 WHERE id = $8 AND status = 'draft'`,
		inv.AdjustmentAccount, inv.Subtotal, inv.DiscountTotal,
		inv.TaxTotal, inv.GrandTotal, inv.Notes, inv.UpdatedAt,
		inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDraft: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvalidState
	}

	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM invoice_lines WHERE invoice_id = $1", inv.ID); err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDraft delete lines: %w", err)
	}
	return r.insertLines(ctx, inv)
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			status = $1, payment_status = $2,
			confirmed_by = $3, confirmed_at = $4,
			cancelled_by = $5, cancelled_at = $6, cancel_reason = $7,
			version = version + 1, updated_at = $8
		 WHERE id = $9 AND version = $10`,
		inv.Status, inv.PaymentStatus,
		inv.ConfirmedBy, inv.ConfirmedAt,
		inv.CancelledBy, inv.CancelledAt, inv.CancelReason,
		inv.UpdatedAt,
		inv.ID, inv.Version)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Version stamp moved under us: another transition won the race.
		return domain.ErrInvalidState
	}
	inv.Version++
	return nil
}

func (r *invoiceRepo) UpdatePayment(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			payment_status = $1, paid_amount = $2,
			version = version + 1, updated_at = $3
		 WHERE id = $4 AND version = $5`,
		inv.PaymentStatus, inv.PaidAmount, inv.UpdatedAt,
		inv.ID, inv.Version)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdatePayment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvalidState
	}
	inv.Version++
	return nil
}

func (r *invoiceRepo) PaidTotalByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(paid_amount), 0) FROM invoices
		 WHERE customer_id = $1 AND kind = 'sale' AND status = 'confirmed'`, partyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invoiceRepo.PaidTotalByParty: %w", err)
	}
	return total, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM invoice_lines WHERE invoice_id = $1 AND EXISTS (SELECT 1 FROM invoices WHERE id = $1 AND status = 'draft')", id); err != nil {
		return fmt.Errorf("invoiceRepo.Delete lines: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND status = 'draft'", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)", id); err != nil {
			return fmt.Errorf("invoiceRepo.Delete check: %w", err)
		}
		if exists {
			return domain.ErrInvalidState
		}
		return domain.ErrNotFound
	}
	return nil
}
