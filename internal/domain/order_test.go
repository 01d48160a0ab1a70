package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding/internal/domain"
	"bidding/models"
)

func newOrder(t *testing.T) (*models.Order, *models.Participation) {
	t.Helper()
	b := newBidding(t)
	p := winningParticipation(b)
	o, h, err := domain.NewOrder(b, p, nil, domain.OrderNumber(now, "1A2B3C4D"), 1, now)
	require.NoError(t, err)
	require.Equal(t, string(models.OrderPending), h.ToStatus)
	o.ID = 40
	return o, p
}

func TestNewOrder(t *testing.T) {
	o, p := newOrder(t)

	assert.Equal(t, "PO-20260310-1A2B3C4D", o.OrderNumber)
	assert.Equal(t, "9900", o.TotalPrice.String())
	assert.Equal(t, 10, o.Quantity)
	assert.True(t, p.OrderCreated)
	assert.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), o.ExpectedDeliveryDate)
	assert.Equal(t, models.OrderPending, o.Status())

	t.Run("Only once per participation", func(t *testing.T) {
		b := newBidding(t)
		_, _, err := domain.NewOrder(b, p, nil, "PO-x", 1, now)
		assert.ErrorIs(t, err, domain.ErrOrderExists)
	})

	t.Run("Delivery date from contract", func(t *testing.T) {
		b := newBidding(t)
		c := &models.Contract{DeliveryDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
		o, _, err := domain.NewOrder(b, winningParticipation(b), c, "PO-y", 1, now)
		require.NoError(t, err)
		assert.Equal(t, c.DeliveryDate, o.ExpectedDeliveryDate)
	})
}

func TestApproveOrder(t *testing.T) {
	o, _ := newOrder(t)

	h, err := domain.ApproveOrder(o, 5, now)
	require.NoError(t, err)
	assert.Equal(t, models.OrderApproved, o.Status())
	assert.Equal(t, "PENDING", h.FromStatus)
	assert.Equal(t, "APPROVED", h.ToStatus)

	_, err = domain.ApproveOrder(o, 5, now)
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)

	_, err = domain.CancelOrder(o, "changed mind", 5, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelOrder(t *testing.T) {
	o, _ := newOrder(t)

	_, err := domain.CancelOrder(o, "no budget", 1, now)
	require.NoError(t, err)
	assert.True(t, o.Canceled)
	assert.Equal(t, models.OrderCanceled, o.Status())

	_, err = domain.ApproveOrder(o, 1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = domain.ChangeDeliveryDate(o, now, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestChangeDeliveryDate(t *testing.T) {
	o, _ := newOrder(t)
	was := o.ExpectedDeliveryDate
	next := was.AddDate(0, 0, 7)

	old, err := domain.ChangeDeliveryDate(o, next, now)
	require.NoError(t, err)
	assert.Equal(t, was, old)
	assert.Equal(t, next, o.ExpectedDeliveryDate)
}
