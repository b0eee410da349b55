package domain

import (
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p, err := NewPayment("pay-1", "order-1", 199.9, "", "p1", 2, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, DefaultCurrency, p.Currency)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, "199.90", p.FormatAmount())

	_, err = NewPayment("pay-2", "", 0, "EUR", "", 0, now)
	v, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, v.Fields, 4)

	_, err = NewPayment("pay-3", "order-1", 10.001, "EUR", "p1", 1, now)
	_, ok = apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusSucceeded, StatusFailed} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("REFUNDED").Valid())
	assert.False(t, Status("succeeded").Valid())
}
