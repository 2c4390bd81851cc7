package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to currency precision, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NegativeLinePolicy decides what happens when a discount pushes an amount below zero.
type NegativeLinePolicy string

const (
	// NegativeReject refuses line items and invoices whose total would be negative.
	NegativeReject NegativeLinePolicy = "reject"
	// NegativeAllowCredit keeps negative totals, treating them as credits.
	NegativeAllowCredit NegativeLinePolicy = "allow_credit"
)

func ParseNegativeLinePolicy(s string) (NegativeLinePolicy, error) {
	switch p := NegativeLinePolicy(s); p {
	case NegativeReject, NegativeAllowCredit:
		return p, nil
	case "":
		return NegativeReject, nil
	}

	return "", fmt.Errorf("unknown negative line policy %q", s)
}

// LineInput is a line item as supplied by the caller, before totals are computed.
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TaxRate     decimal.Decimal
	ItemType    string
	ItemID      *uuid.UUID
}

// LineSubtotal is quantity × unit price, unrounded.
func LineSubtotal(in LineInput) decimal.Decimal {
	return in.Quantity.Mul(in.UnitPrice)
}

// lineTax is the discount-adjusted tax of a line, unrounded.
func lineTax(in LineInput) decimal.Decimal {
	return LineSubtotal(in).Sub(in.Discount).Mul(in.TaxRate.Div(hundred))
}

// LineTotal computes (quantity × unit price − discount) plus tax at TaxRate percent,
// rounded once at the end. A discount larger than the subtotal yields a negative total.
func LineTotal(in LineInput) decimal.Decimal {
	afterDiscount := LineSubtotal(in).Sub(in.Discount)
	return Round2(afterDiscount.Add(lineTax(in)))
}

// Totals are the aggregate amounts of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeTotals aggregates lines into invoice totals. With an invoice-level taxRate the
// tax is taxRate percent of (subtotal − discount); otherwise it is the sum of each
// line's own discount-adjusted tax. A nil discount defaults to the sum of line discounts.
func ComputeTotals(lines []LineInput, taxRate, discount *decimal.Decimal) Totals {
	var subtotal, lineDiscounts, lineTaxes decimal.Decimal

	for _, l := range lines {
		subtotal = subtotal.Add(LineSubtotal(l))
		lineDiscounts = lineDiscounts.Add(l.Discount)
		lineTaxes = lineTaxes.Add(lineTax(l))
	}

	t := Totals{
		Subtotal:       Round2(subtotal),
		DiscountAmount: Round2(lineDiscounts),
	}

	if discount != nil {
		t.DiscountAmount = Round2(*discount)
	}

	if taxRate != nil {
		t.TaxAmount = Round2(t.Subtotal.Sub(t.DiscountAmount).Mul(taxRate.Div(hundred)))
	} else {
		t.TaxAmount = Round2(lineTaxes)
	}

	t.TotalAmount = Round2(t.Subtotal.Sub(t.DiscountAmount).Add(t.TaxAmount))

	return t
}

// Calculator applies the configured negative-amount policy on top of the pure math.
type Calculator struct {
	Policy NegativeLinePolicy
}

// Line returns the line total, or ErrNegativeLineTotal when the policy rejects it.
func (c Calculator) Line(in LineInput) (decimal.Decimal, error) {
	total := LineTotal(in)
	if total.IsNegative() && c.Policy != NegativeAllowCredit {
		return decimal.Zero, ErrNegativeLineTotal
	}

	return total, nil
}

// Totals returns the invoice totals, or ErrNegativeTotal when the policy rejects them.
func (c Calculator) Totals(lines []LineInput, taxRate, discount *decimal.Decimal) (Totals, error) {
	t := ComputeTotals(lines, taxRate, discount)
	if t.TotalAmount.IsNegative() && c.Policy != NegativeAllowCredit {
		return Totals{}, ErrNegativeTotal
	}

	return t, nil
}
