package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebooks/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual, msgAndArgs)
}

func pct(s string) DiscountSpec  { return DiscountSpec{Percent: dec(s)} }
func amt(s string) DiscountSpec  { return DiscountSpec{Amount: dec(s)} }
func tax(code, rate string) domain.TaxCode {
	return domain.TaxCode{Code: code, RatePct: dec(rate)}
}

func TestComputeLine_ExclusiveTax(t *testing.T) {
	// qty 30 at 10 with 18% exclusive tax.
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("10"),
		Quantity:  dec("30"),
		TaxCodes:  []domain.TaxCode{tax("VAT18", "18")},
	})
	require.NoError(t, err)
	assertDec(t, "300", b.Subtotal)
	assertDec(t, "0", b.Discount1Amount)
	assertDec(t, "300", b.TaxableAmount)
	assertDec(t, "54", b.TaxAmount)
	assertDec(t, "354", b.LineTotal)
}

func TestComputeLine_SequentialDiscounts(t *testing.T) {
	// 10% then 5% on 1000: discount2 applies to the 900 remaining after
	// discount1, so the total is 145, not 150.
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("100"),
		Quantity:  dec("10"),
		Discount1: pct("10"),
		Discount2: pct("5"),
	})
	require.NoError(t, err)
	assertDec(t, "100", b.Discount1Amount)
	assertDec(t, "45", b.Discount2Amount)
	assertDec(t, "855", b.TaxableAmount)
	assertDec(t, "855", b.LineTotal)

	totalDiscount := b.Discount1Amount.Add(b.Discount2Amount)
	additive := dec("1000").Mul(dec("15")).Div(dec("100"))
	assert.True(t, totalDiscount.LessThan(additive),
		"sequential compounding must be strictly below the additive %s, got %s", additive, totalDiscount)
}

func TestComputeLine_FixedDiscounts(t *testing.T) {
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("50"),
		Quantity:  dec("4"),
		Discount1: amt("20"),
		Discount2: pct("10"),
	})
	require.NoError(t, err)
	assertDec(t, "200", b.Subtotal)
	assertDec(t, "20", b.Discount1Amount)
	assertDec(t, "18", b.Discount2Amount) // 10% of the remaining 180
	assertDec(t, "162", b.LineTotal)
}

func TestComputeLine_TaxAfterDiscounts(t *testing.T) {
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("100"),
		Quantity:  dec("10"),
		Discount1: pct("10"),
		TaxCodes:  []domain.TaxCode{tax("VAT18", "18")},
	})
	require.NoError(t, err)
	// Tax on the 900 remaining after discount, not on 1000.
	assertDec(t, "162", b.TaxAmount)
	assertDec(t, "1062", b.LineTotal)
}

func TestComputeLine_InclusiveTax(t *testing.T) {
	// 118 tax-inclusive at 18%: tax = 118 * 18/118 = 18.
	b, err := ComputeLine(LineInput{
		UnitPrice:    dec("118"),
		Quantity:     dec("1"),
		TaxCodes:     []domain.TaxCode{tax("VAT18", "18")},
		TaxInclusive: true,
	})
	require.NoError(t, err)
	assertDec(t, "100", b.TaxableAmount)
	assertDec(t, "18", b.TaxAmount)
	assertDec(t, "118", b.LineTotal)
}

func TestComputeLine_InclusiveRoundingIdentity(t *testing.T) {
	// The raw net rounds down while the raw gross rounds up here. The net
	// must be derived from the rounded gross and tax, not rounded on its
	// own, or the breakdown drifts a cent from the line total.
	b, err := ComputeLine(LineInput{
		UnitPrice:    dec("12.31"),
		Quantity:     dec("1"),
		Discount1:    pct("2.475"),
		TaxCodes:     []domain.TaxCode{tax("VAT18", "18")},
		TaxInclusive: true,
	})
	require.NoError(t, err)
	assertDec(t, "12.01", b.LineTotal)
	assertDec(t, "1.83", b.TaxAmount)
	assertDec(t, "10.18", b.TaxableAmount)
	assert.True(t, b.TaxableAmount.Add(b.TaxAmount).Equal(b.LineTotal))

	// Exclusive mode holds the same identity by deriving the total from
	// the rounded components.
	ex, err := ComputeLine(LineInput{
		UnitPrice: dec("10"),
		Quantity:  dec("1"),
		Discount1: pct("2.475"),
		TaxCodes:  []domain.TaxCode{tax("VAT18", "18")},
	})
	require.NoError(t, err)
	assert.True(t, ex.TaxableAmount.Add(ex.TaxAmount).Equal(ex.LineTotal))
}

func TestComputeLine_MultipleTaxCodes(t *testing.T) {
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("200"),
		Quantity:  dec("1"),
		TaxCodes:  []domain.TaxCode{tax("CGST9", "9"), tax("SGST9", "9")},
	})
	require.NoError(t, err)
	assertDec(t, "36", b.TaxAmount)
	require.Len(t, b.Taxes, 2)
	assertDec(t, "18", b.Taxes[0].Amount)
	assertDec(t, "18", b.Taxes[1].Amount)
}

func TestComputeLine_CompoundTax(t *testing.T) {
	// Compound second code taxes base + prior tax: 100 -> 10 + (110 * 5%) = 15.50.
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("100"),
		Quantity:  dec("1"),
		TaxCodes: []domain.TaxCode{
			tax("LEVY10", "10"),
			{Code: "SURCHARGE5", RatePct: dec("5"), Compound: true},
		},
	})
	require.NoError(t, err)
	assertDec(t, "10", b.Taxes[0].Amount)
	assertDec(t, "5.5", b.Taxes[1].Amount)
	assertDec(t, "15.5", b.TaxAmount)
	assertDec(t, "115.5", b.LineTotal)
}

func TestComputeLine_CompoundOrderMatters(t *testing.T) {
	codes := []domain.TaxCode{
		{Code: "A", RatePct: dec("10"), Compound: true},
		{Code: "B", RatePct: dec("5")},
	}
	forward, err := ComputeLine(LineInput{UnitPrice: dec("100"), Quantity: dec("1"), TaxCodes: codes})
	require.NoError(t, err)

	reversed, err := ComputeLine(LineInput{
		UnitPrice: dec("100"), Quantity: dec("1"),
		TaxCodes: []domain.TaxCode{codes[1], codes[0]},
	})
	require.NoError(t, err)
	assert.False(t, forward.TaxAmount.Equal(reversed.TaxAmount),
		"compound ordering must affect the result: %s vs %s", forward.TaxAmount, reversed.TaxAmount)
}

func TestComputeLine_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   LineInput
	}{
		{"negative quantity", LineInput{UnitPrice: dec("10"), Quantity: dec("-1")}},
		{"zero quantity", LineInput{UnitPrice: dec("10"), Quantity: dec("0")}},
		{"negative price", LineInput{UnitPrice: dec("-10"), Quantity: dec("1")}},
		{"discount over 100", LineInput{UnitPrice: dec("10"), Quantity: dec("1"), Discount1: pct("101")}},
		{"negative discount", LineInput{UnitPrice: dec("10"), Quantity: dec("1"), Discount2: pct("-5")}},
		{"both percent and amount", LineInput{UnitPrice: dec("10"), Quantity: dec("1"),
			Discount1: DiscountSpec{Percent: dec("5"), Amount: dec("1")}}},
		{"fixed discount exceeds base", LineInput{UnitPrice: dec("10"), Quantity: dec("1"), Discount1: amt("11")}},
		{"unknown tax code", LineInput{UnitPrice: dec("10"), Quantity: dec("1"),
			TaxCodes: []domain.TaxCode{{RatePct: dec("18")}}}},
		{"negative tax rate", LineInput{UnitPrice: dec("10"), Quantity: dec("1"),
			TaxCodes: []domain.TaxCode{tax("BAD", "-1")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLine(tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)
	assertDec(t, "0", totals.Subtotal)
	assertDec(t, "0", totals.DiscountTotal)
	assertDec(t, "0", totals.TaxTotal)
	assertDec(t, "0", totals.GrandTotal)
}

func TestComputeTotals_Identity(t *testing.T) {
	var lines []LineBreakdown
	for _, in := range []LineInput{
		{UnitPrice: dec("10"), Quantity: dec("30"), TaxCodes: []domain.TaxCode{tax("VAT18", "18")}},
		{UnitPrice: dec("100"), Quantity: dec("10"), Discount1: pct("10"), Discount2: pct("5")},
		{UnitPrice: dec("118"), Quantity: dec("2"), TaxCodes: []domain.TaxCode{tax("VAT18", "18")}, TaxInclusive: true},
	} {
		b, err := ComputeLine(in)
		require.NoError(t, err)
		lines = append(lines, *b)
	}
	totals := ComputeTotals(lines)
	expected := totals.Subtotal.Sub(totals.DiscountTotal).Add(totals.TaxTotal)
	assert.True(t, totals.GrandTotal.Equal(expected),
		"grandTotal %s must equal subtotal-discount+tax %s", totals.GrandTotal, expected)
}

func TestLineBreakdown_Negate(t *testing.T) {
	b, err := ComputeLine(LineInput{
		UnitPrice: dec("10"), Quantity: dec("30"),
		Discount1: pct("10"),
		TaxCodes:  []domain.TaxCode{tax("VAT18", "18")},
	})
	require.NoError(t, err)

	n := b.Negate()
	assert.True(t, n.Subtotal.Equal(b.Subtotal.Neg()))
	assert.True(t, n.TaxAmount.Equal(b.TaxAmount.Neg()))
	assert.True(t, n.LineTotal.Equal(b.LineTotal.Neg()))
	assert.True(t, n.LineTotal.Add(b.LineTotal).IsZero())
	require.Len(t, n.Taxes, 1)
	assert.True(t, n.Taxes[0].Amount.Equal(b.Taxes[0].Amount.Neg()))
}
