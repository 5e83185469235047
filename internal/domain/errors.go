package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for the closed set of error kinds. Callers branch with
// errors.Is; payload-carrying kinds wrap their sentinel and are recovered
// with errors.As.
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidState           = errors.New("transition not legal from current state")
	ErrValidation             = errors.New("validation failed")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrCreditLimitExceeded    = errors.New("credit limit exceeded")
	ErrReturnQuantityExceeded = errors.New("return quantity exceeded")
	ErrDuplicateNumber        = errors.New("document number already exists")
)

// StockShortfall describes one item that failed an availability check.
type StockShortfall struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// InsufficientStockError carries the full per-item shortfall list for a
// rejected stock batch. No partial application happens.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("item %s: requested %s, available %s",
			s.ItemID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CreditLimitExceededError carries the attempted amount and the party's limit.
type CreditLimitExceededError struct {
	PartyID     uuid.UUID
	Amount      decimal.Decimal
	Outstanding decimal.Decimal
	Limit       decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for party %s: amount %s, outstanding %s, limit %s",
		e.PartyID, e.Amount, e.Outstanding, e.Limit)
}

func (e *CreditLimitExceededError) Unwrap() error { return ErrCreditLimitExceeded }

// ReturnExcess describes one item whose requested return quantity exceeds
// what remains returnable.
type ReturnExcess struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// ReturnQuantityExceededError carries every over-requested item of a
// rejected return. No partial return is created.
type ReturnQuantityExceededError struct {
	Excess []ReturnExcess
}

func (e *ReturnQuantityExceededError) Error() string {
	parts := make([]string, 0, len(e.Excess))
	for _, x := range e.Excess {
		parts = append(parts, fmt.Sprintf("item %s: requested %s, returnable %s",
			x.ItemID, x.Requested, x.Available))
	}
	return "return quantity exceeded: " + strings.Join(parts, "; ")
}

func (e *ReturnQuantityExceededError) Unwrap() error { return ErrReturnQuantityExceeded }
