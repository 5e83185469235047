// Package pricing computes deterministic line and document totals: layered
// sequential discounts, then tax in inclusive or exclusive mode, with
// support for multiple (optionally compound) tax codes per line. The package
// is pure: no I/O, no clock, no randomness.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// DiscountSpec selects either a percentage of the base or a fixed amount.
// At most one of the two may be nonzero.
type DiscountSpec struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// AppliedTax is the computed contribution of one tax code on a line.
type AppliedTax struct {
	Code   string          `json:"code"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// LineInput is everything needed to price one line.
type LineInput struct {
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	Discount1 DiscountSpec
	Discount2 DiscountSpec
	// TaxCodes are applied in the given order; a compound code adds the tax
	// accumulated so far into its base.
	TaxCodes []domain.TaxCode
	// TaxInclusive extracts tax out of the discounted amount instead of
	// adding it on top.
	TaxInclusive bool
}

// LineBreakdown is the deterministic result of pricing one line.
// All amounts are rounded to 2 decimal places.
type LineBreakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount1Amount decimal.Decimal `json:"discount1_amount"`
	Discount2Amount decimal.Decimal `json:"discount2_amount"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
	Taxes           []AppliedTax    `json:"taxes,omitempty"`
}

// Totals aggregates line breakdowns into document totals.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

func (d DiscountSpec) validate(label string) error {
	if !d.Percent.IsZero() && !d.Amount.IsZero() {
		return fmt.Errorf("%w: %s specifies both percent and amount", domain.ErrValidation, label)
	}
	if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s percent must be within [0,100]", domain.ErrValidation, label)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: %s amount must not be negative", domain.ErrValidation, label)
	}
	return nil
}

// amountOn resolves the discount against its base. A fixed amount larger
// than the base is rejected rather than clamped.
func (d DiscountSpec) amountOn(base decimal.Decimal, label string) (decimal.Decimal, error) {
	if !d.Amount.IsZero() {
		if d.Amount.GreaterThan(base) {
			return decimal.Zero, fmt.Errorf("%w: %s amount exceeds remaining line amount", domain.ErrValidation, label)
		}
		return d.Amount, nil
	}
	return base.Mul(d.Percent).Div(hundred), nil
}

// ComputeLine prices a single line. Discount1 is taken on quantity*unitPrice;
// discount2 on the remainder after discount1; tax on the remainder after both.
func ComputeLine(in LineInput) (*LineBreakdown, error) {
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must not be negative", domain.ErrValidation)
	}
	if err := in.Discount1.validate("discount1"); err != nil {
		return nil, err
	}
	if err := in.Discount2.validate("discount2"); err != nil {
		return nil, err
	}
	for _, tc := range in.TaxCodes {
		if tc.Code == "" {
			return nil, fmt.Errorf("%w: unknown tax code", domain.ErrValidation)
		}
		if tc.RatePct.IsNegative() {
			return nil, fmt.Errorf("%w: tax code %s has a negative rate", domain.ErrValidation, tc.Code)
		}
	}

	subtotal := in.Quantity.Mul(in.UnitPrice)

	d1, err := in.Discount1.amountOn(subtotal, "discount1")
	if err != nil {
		return nil, err
	}
	afterD1 := subtotal.Sub(d1)

	d2, err := in.Discount2.amountOn(afterD1, "discount2")
	if err != nil {
		return nil, err
	}
	discounted := afterD1.Sub(d2)

	var taxable decimal.Decimal
	var taxes []AppliedTax
	if in.TaxInclusive {
		// Extract tax out of the discounted amount: net = amount / (1+f),
		// where f is the effective tax factor the codes would produce on a
		// net base of 1 (generalizes tax = amount*r/(1+r) to compound and
		// multi-code lines).
		factor, _ := applyTaxes(one, in.TaxCodes)
		taxable = discounted.Div(one.Add(factor))
		_, taxes = applyTaxes(taxable, in.TaxCodes)
	} else {
		taxable = discounted
		_, taxes = applyTaxes(taxable, in.TaxCodes)
	}

	taxAmount := decimal.Zero
	for i := range taxes {
		taxes[i].Amount = taxes[i].Amount.Round(2)
		taxAmount = taxAmount.Add(taxes[i].Amount)
	}

	// Round one side and derive the other so taxable + tax = total holds
	// exactly, even when both raw amounts sit on a half-cent boundary.
	var total decimal.Decimal
	if in.TaxInclusive {
		total = discounted.Round(2)
		taxable = total.Sub(taxAmount)
	} else {
		taxable = taxable.Round(2)
		total = taxable.Add(taxAmount)
	}

	return &LineBreakdown{
		Subtotal:        subtotal.Round(2),
		Discount1Amount: d1.Round(2),
		Discount2Amount: d2.Round(2),
		TaxableAmount:   taxable,
		TaxAmount:       taxAmount,
		LineTotal:       total,
		Taxes:           taxes,
	}, nil
}

// applyTaxes runs the codes in order against base and returns the total tax
// plus the per-code contributions. Compound codes fold the tax accumulated
// so far into their base.
func applyTaxes(base decimal.Decimal, codes []domain.TaxCode) (decimal.Decimal, []AppliedTax) {
	totalTax := decimal.Zero
	applied := make([]AppliedTax, 0, len(codes))
	for _, tc := range codes {
		taxBase := base
		if tc.Compound {
			taxBase = taxBase.Add(totalTax)
		}
		amount := taxBase.Mul(tc.RatePct).Div(hundred)
		totalTax = totalTax.Add(amount)
		applied = append(applied, AppliedTax{Code: tc.Code, Rate: tc.RatePct, Amount: amount})
	}
	return totalTax, applied
}

// ComputeTotals aggregates line breakdowns. An empty line list yields all
// zeroes. grandTotal = subtotal - discountTotal + taxTotal holds by
// construction.
func ComputeTotals(lines []LineBreakdown) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		TaxTotal:      decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
	for i := range lines {
		l := &lines[i]
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.DiscountTotal = t.DiscountTotal.Add(l.Discount1Amount).Add(l.Discount2Amount)
		t.TaxTotal = t.TaxTotal.Add(l.TaxAmount)
	}
	t.GrandTotal = t.Subtotal.Sub(t.DiscountTotal).Add(t.TaxTotal)
	return t
}

// Negate flips the sign of every amount in the breakdown. Used to derive the
// stored amounts of a return document from the forward-equivalent pricing.
func (b *LineBreakdown) Negate() *LineBreakdown {
	n := &LineBreakdown{
		Subtotal:        b.Subtotal.Neg(),
		Discount1Amount: b.Discount1Amount.Neg(),
		Discount2Amount: b.Discount2Amount.Neg(),
		TaxableAmount:   b.TaxableAmount.Neg(),
		TaxAmount:       b.TaxAmount.Neg(),
		LineTotal:       b.LineTotal.Neg(),
		Taxes:           make([]AppliedTax, len(b.Taxes)),
	}
	for i, t := range b.Taxes {
		n.Taxes[i] = AppliedTax{Code: t.Code, Rate: t.Rate, Amount: t.Amount.Neg()}
	}
	return n
}
