package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding/internal/domain"
	"bidding/models"
)

func winningParticipation(b *models.Bidding) *models.Participation {
	p := &models.Participation{ID: 20, BiddingID: b.ID, SupplierID: 2, Selected: true}
	p.UnitPrice = decimal.NewFromInt(900)
	p.SupplyPrice = decimal.NewFromInt(9000)
	p.Tax = decimal.NewFromInt(900)
	p.TotalPrice = decimal.NewFromInt(9900)
	return p
}

func draft(t *testing.T) *models.Contract {
	t.Helper()
	b := newBidding(t)
	c, err := domain.DraftContract(b, winningParticipation(b), "CT-20260310-0001", 1, now)
	require.NoError(t, err)
	c.ID = 30
	return c
}

func TestTransactionNumber(t *testing.T) {
	assert.Equal(t, "CT-20260310-0001", domain.TransactionNumber("BID-20260310-0001", now, "ZZZZ"))
	assert.Equal(t, "CT-20260310-AB12", domain.TransactionNumber("LEGACY-77", now, "AB12"))
	assert.Equal(t, "CT-20260310-AB12", domain.TransactionNumber("BID-x", now, "AB12"))
}

func TestDraftContract(t *testing.T) {
	c := draft(t)

	assert.Equal(t, models.ContractDraft, c.Status)
	assert.Equal(t, "9900", c.TotalPrice.String())
	assert.Equal(t, int64(2), c.SupplierID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), c.StartDate)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), c.EndDate)

	t.Run("Requires the winner", func(t *testing.T) {
		b := newBidding(t)
		p := winningParticipation(b)
		p.Selected = false
		_, err := domain.DraftContract(b, p, "CT-1", 1, now)
		assert.ErrorIs(t, err, domain.ErrNotWinner)
	})
}

func TestContractCompletion(t *testing.T) {
	c := draft(t)

	require.NoError(t, domain.SignContract(c, domain.PartyBuyer, "buyer-sig", 1, now))
	assert.Nil(t, domain.CompleteIfSigned(c, 1, now))
	assert.Equal(t, models.ContractDraft, c.Status, "one signature keeps the draft")

	require.NoError(t, domain.SignContract(c, domain.PartySupplier, "supplier-sig", 2, now))
	h := domain.CompleteIfSigned(c, 2, now)
	require.NotNil(t, h)
	assert.Equal(t, models.ContractClosed, c.Status)
	assert.Equal(t, string(models.ContractDraft), h.FromStatus)
	assert.Equal(t, string(models.ContractClosed), h.ToStatus)

	err := domain.SignContract(c, domain.PartyBuyer, "again", 1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSignContract(t *testing.T) {
	c := draft(t)

	err := domain.SignContract(c, domain.PartySupplier, "sig", 99, now)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = domain.SignContract(c, domain.PartyBuyer, "  ", 1, now)
	assert.Equal(t, domain.InvalidArgument, domain.KindOf(err))

	t.Run("Supplier cannot sign for the buyer", func(t *testing.T) {
		c := draft(t)
		require.NoError(t, domain.SignContract(c, domain.PartySupplier, "supplier-sig", c.SupplierID, now))

		err := domain.SignContract(c, domain.PartyBuyer, "buyer-sig", c.SupplierID, now)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, c.BuyerSignature)
		assert.Nil(t, domain.CompleteIfSigned(c, c.SupplierID, now))
		assert.Equal(t, models.ContractDraft, c.Status)
	})
}

func TestStartContract(t *testing.T) {
	c := draft(t)

	_, err := domain.StartContract(c, 1, now)
	require.NoError(t, err)
	assert.Equal(t, models.ContractInProgress, c.Status)

	_, err = domain.StartContract(c, 1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelContract(t *testing.T) {
	t.Run("Closed contract", func(t *testing.T) {
		c := draft(t)
		c.Status = models.ContractClosed
		_, err := domain.CancelContract(c, "late", 1, now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Equal(t, domain.IllegalState, domain.KindOf(err))
	})

	t.Run("Draft contract", func(t *testing.T) {
		c := draft(t)
		h, err := domain.CancelContract(c, "budget cut", 1, now)
		require.NoError(t, err)
		assert.Equal(t, models.ContractCanceled, c.Status)
		assert.Equal(t, "budget cut", h.Reason)
	})
}

func TestUpdateContractCompletes(t *testing.T) {
	c := draft(t)
	c.BuyerSignature = "b"
	c.SupplierSignature = "s"

	unit := decimal.NewFromInt(1000)
	require.NoError(t, domain.UpdateContract(c, domain.ContractPatch{UnitPrice: &unit}, now))
	assert.Equal(t, "11000", c.TotalPrice.String())

	h := domain.CompleteIfSigned(c, 1, now)
	require.NotNil(t, h)
	assert.Equal(t, models.ContractClosed, c.Status)
}
