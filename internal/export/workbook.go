// Package export renders ledger and stock data as Excel workbooks for
// download by accountants and stock keepers.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tradebooks/internal/domain"
)

const sheetName = "Sheet1"

// LedgerWorkbook writes accounting ledger entries as a single-sheet
// workbook to w, one row per entry with debit and credit in separate
// columns the way account statements are usually printed.
func LedgerWorkbook(w io.Writer, entries []domain.LedgerEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headers := []string{"Date", "Account", "Debit", "Credit", "Ref Kind", "Ref ID", "Memo"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export.LedgerWorkbook: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("export.LedgerWorkbook: %w", err)
		}
	}

	for row, e := range entries {
		debit, credit := "", ""
		if e.Direction == domain.Debit {
			debit = e.Amount.StringFixed(2)
		} else {
			credit = e.Amount.StringFixed(2)
		}
		values := []interface{}{
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Account,
			debit,
			credit,
			string(e.RefKind),
			e.RefID.String(),
			e.Memo,
		}
		if err := setRow(f, row+2, values); err != nil {
			return fmt.Errorf("export.LedgerWorkbook: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.LedgerWorkbook: write: %w", err)
	}
	return nil
}

// StockMovementWorkbook writes stock movements as a single-sheet workbook
// to w with signed quantities, newest ordering left to the caller.
func StockMovementWorkbook(w io.Writer, movements []domain.StockMovement) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headers := []string{"Date", "Item ID", "Warehouse", "Quantity", "Kind", "Ref Kind", "Ref ID", "Note"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export.StockMovementWorkbook: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("export.StockMovementWorkbook: %w", err)
		}
	}

	for row, m := range movements {
		values := []interface{}{
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.ItemID.String(),
			m.Warehouse,
			m.Quantity.String(),
			string(m.Kind),
			string(m.RefKind),
			m.RefID.String(),
			m.Note,
		}
		if err := setRow(f, row+2, values); err != nil {
			return fmt.Errorf("export.StockMovementWorkbook: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.StockMovementWorkbook: write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}
