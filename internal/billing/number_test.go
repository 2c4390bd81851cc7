package billing_test

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
)

var invoiceNumberRe = regexp.MustCompile(`^INV-\d{8}-[A-Z0-9]{5}$`)

func TestNumbers_Invoice(t *testing.T) {
	n := billing.NewNumbers()
	// 02:00 on the 15th in UTC+8 is still the 14th in UTC.
	now := time.Date(2026, 3, 15, 2, 0, 0, 0, time.FixedZone("ULAT", 8*3600))

	for range 20 {
		got, err := n.Invoice(now)
		require.NoError(t, err)
		assert.Regexp(t, invoiceNumberRe, got)
		assert.True(t, strings.HasPrefix(got, "INV-20260314-"), got)
	}
}

func TestNumbers_PaymentMonotonic(t *testing.T) {
	n := billing.NewNumbers()
	now := time.UnixMilli(1_700_000_000_000)

	var last int64

	for i := range 5 {
		got := n.Payment(now)
		require.True(t, strings.HasPrefix(got, "PAY-"), got)

		ms, err := strconv.ParseInt(strings.TrimPrefix(got, "PAY-"), 10, 64)
		require.NoError(t, err)

		if i > 0 {
			assert.Greater(t, ms, last)
		}

		last = ms
	}

	// A clock that moves backwards still never repeats a number.
	earlier := n.Payment(now.Add(-time.Second))
	ms, err := strconv.ParseInt(strings.TrimPrefix(earlier, "PAY-"), 10, 64)
	require.NoError(t, err)
	assert.Greater(t, ms, last)
}
