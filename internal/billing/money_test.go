package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		in   billing.LineInput
		want string
	}{
		{
			name: "TaxOnly",
			in:   billing.LineInput{Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: dec("10")},
			want: "220",
		},
		{
			name: "DiscountBeforeTax",
			in:   billing.LineInput{Quantity: dec("2"), UnitPrice: dec("100"), Discount: dec("10"), TaxRate: dec("10")},
			want: "209",
		},
		{
			name: "NoTaxNoDiscount",
			in:   billing.LineInput{Quantity: dec("3"), UnitPrice: dec("15.5")},
			want: "46.5",
		},
		{
			name: "RoundedOnceAtTheEnd",
			in:   billing.LineInput{Quantity: dec("3"), UnitPrice: dec("0.333")},
			want: "1",
		},
		{
			name: "HalfRoundsAwayFromZero",
			in:   billing.LineInput{Quantity: dec("1"), UnitPrice: dec("0.125")},
			want: "0.13",
		},
		{
			name: "DiscountLargerThanSubtotal",
			in:   billing.LineInput{Quantity: dec("1"), UnitPrice: dec("10"), Discount: dec("20")},
			want: "-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, billing.LineTotal(tt.in))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []billing.LineInput{
		{Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: dec("10")},
		{Quantity: dec("1"), UnitPrice: dec("50"), Discount: dec("5")},
	}

	t.Run("PerLineTax", func(t *testing.T) {
		got := billing.ComputeTotals(lines, nil, nil)

		assertAmount(t, "250", got.Subtotal)
		assertAmount(t, "5", got.DiscountAmount)
		assertAmount(t, "20", got.TaxAmount)
		assertAmount(t, "265", got.TotalAmount)

		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(billing.LineTotal(l))
		}

		assertAmount(t, sum.String(), got.TotalAmount)
	})

	t.Run("InvoiceLevelTaxRate", func(t *testing.T) {
		got := billing.ComputeTotals(lines, decPtr("10"), nil)

		assertAmount(t, "24.5", got.TaxAmount)
		assertAmount(t, "269.5", got.TotalAmount)
	})

	t.Run("ExplicitDiscount", func(t *testing.T) {
		got := billing.ComputeTotals(lines, nil, decPtr("30"))

		assertAmount(t, "30", got.DiscountAmount)
		assertAmount(t, "240", got.TotalAmount)
	})
}

func TestCalculator_Policy(t *testing.T) {
	negative := billing.LineInput{Quantity: dec("1"), UnitPrice: dec("10"), Discount: dec("20")}

	t.Run("RejectLine", func(t *testing.T) {
		_, err := billing.Calculator{Policy: billing.NegativeReject}.Line(negative)
		assert.ErrorIs(t, err, billing.ErrNegativeLineTotal)
	})

	t.Run("ZeroValuePolicyRejects", func(t *testing.T) {
		_, err := billing.Calculator{}.Line(negative)
		assert.ErrorIs(t, err, billing.ErrNegativeLineTotal)
	})

	t.Run("AllowCreditLine", func(t *testing.T) {
		got, err := billing.Calculator{Policy: billing.NegativeAllowCredit}.Line(negative)
		require.NoError(t, err)
		assertAmount(t, "-10", got)
	})

	t.Run("RejectTotal", func(t *testing.T) {
		lines := []billing.LineInput{{Quantity: dec("1"), UnitPrice: dec("10")}}

		_, err := billing.Calculator{}.Totals(lines, nil, decPtr("15"))
		assert.ErrorIs(t, err, billing.ErrNegativeTotal)
	})
}

func TestParseNegativeLinePolicy(t *testing.T) {
	p, err := billing.ParseNegativeLinePolicy("")
	require.NoError(t, err)
	assert.Equal(t, billing.NegativeReject, p)

	p, err = billing.ParseNegativeLinePolicy("allow_credit")
	require.NoError(t, err)
	assert.Equal(t, billing.NegativeAllowCredit, p)

	_, err = billing.ParseNegativeLinePolicy("ignore")
	assert.Error(t, err)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		total, paid string
		want        billing.InvoiceStatus
		wantDue     string
	}{
		{"220", "0", billing.InvoiceDraft, "220"},
		{"220", "100", billing.InvoicePartial, "120"},
		{"220", "220", billing.InvoicePaid, "0"},
		{"220", "300", billing.InvoicePaid, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.total+"/"+tt.paid, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.DeriveStatus(dec(tt.total), dec(tt.paid)))
			assertAmount(t, tt.wantDue, billing.AmountDue(dec(tt.total), dec(tt.paid)))
		})
	}
}

func TestInvoice_ApplyPayment(t *testing.T) {
	inv := &billing.Invoice{TotalAmount: dec("220"), AmountDue: dec("220"), Status: billing.InvoiceDraft}

	inv.ApplyPayment(dec("100"))
	assertAmount(t, "100", inv.AmountPaid)
	assertAmount(t, "120", inv.AmountDue)
	assert.Equal(t, billing.InvoicePartial, inv.Status)

	inv.ApplyPayment(dec("120"))
	assertAmount(t, "0", inv.AmountDue)
	assert.Equal(t, billing.InvoicePaid, inv.Status)
}
