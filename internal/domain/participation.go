package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"bidding/internal/pricing"
	"bidding/models"
)

// NewParticipation создаёт предложение поставщика с ценами от количества объявления.
func NewParticipation(b *models.Bidding, supplier *models.Member, unitPrice decimal.Decimal, now time.Time) (*models.Participation, error) {
	if err := AcceptingBids(b, now); err != nil {
		return nil, err
	}
	if supplier.Role != models.RoleSupplier {
		return nil, Invalid("member %d is not a supplier", supplier.ID)
	}
	name := supplier.CompanyName
	if name == "" {
		name = supplier.Name
	}
	p := &models.Participation{
		BiddingID:   b.ID,
		SupplierID:  supplier.ID,
		CompanyName: name,
		SubmittedAt: now,
	}
	if err := pricing.Reprice(&p.Price, unitPrice, b.Quantity); err != nil {
		return nil, Invalid("%v", err)
	}
	return p, nil
}

// RepriceParticipation меняет цену за единицу, пока приём предложений открыт.
func RepriceParticipation(p *models.Participation, b *models.Bidding, supplierID int64, unitPrice decimal.Decimal, now time.Time) error {
	if p.SupplierID != supplierID {
		return ErrForbidden.Withf("participation belongs to another supplier")
	}
	if err := AcceptingBids(b, now); err != nil {
		return err
	}
	if p.Confirmed {
		return ErrInvalidState.Withf("participation already confirmed")
	}
	if err := pricing.Reprice(&p.Price, unitPrice, b.Quantity); err != nil {
		return Invalid("%v", err)
	}
	p.SubmittedAt = now
	return nil
}

func ConfirmParticipation(p *models.Participation, now time.Time) error {
	if p.Confirmed {
		return ErrInvalidState.Withf("participation already confirmed")
	}
	p.Confirmed = true
	p.ConfirmedAt = &now
	return nil
}
