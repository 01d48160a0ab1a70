package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// SubmitParticipation принимает ценовое предложение поставщика.
func (s *Service) SubmitParticipation(ctx context.Context, actor *models.Member, biddingID int64, unitPrice decimal.Decimal) (*models.Participation, error) {
	var p *models.Participation
	err := s.tx(ctx, func(r Repository, out *pending) error {
		b, err := r.GetBidding(ctx, biddingID)
		if err != nil {
			return err
		}
		inv, err := r.FindInvitation(ctx, biddingID, actor.ID)
		if err != nil {
			return err
		}
		if inv != nil && inv.Rejected {
			return domain.ErrInvalidState.Withf("supplier declined the invitation")
		}
		if p, err = domain.NewParticipation(b, actor, unitPrice, s.now()); err != nil {
			return err
		}
		if err := r.CreateParticipation(ctx, p); err != nil {
			return err
		}
		out.add([]int64{b.CreatedBy}, notify.CategoryParticipation, b.ID,
			fmt.Sprintf("New bid on %s", b.BidNumber),
			fmt.Sprintf("%s submitted %s total", p.CompanyName, p.TotalPrice.StringFixed(0)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RepriceParticipation меняет цену предложения, пока приём открыт.
func (s *Service) RepriceParticipation(ctx context.Context, actor *models.Member, id int64, unitPrice decimal.Decimal) (*models.Participation, error) {
	var p *models.Participation
	err := s.tx(ctx, func(r Repository, _ *pending) error {
		var (
			b   *models.Bidding
			err error
		)
		if p, b, err = lockParticipation(ctx, r, id); err != nil {
			return err
		}
		if err := domain.RepriceParticipation(p, b, actor.ID, unitPrice, s.now()); err != nil {
			return err
		}
		return r.UpdateParticipation(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfirmParticipation подтверждает получение предложения заказчиком.
func (s *Service) ConfirmParticipation(ctx context.Context, actor *models.Member, id int64) (*models.Participation, error) {
	var p *models.Participation
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if p, _, err = lockParticipation(ctx, r, id); err != nil {
			return err
		}
		if err := domain.ConfirmParticipation(p, s.now()); err != nil {
			return err
		}
		if err := r.UpdateParticipation(ctx, p); err != nil {
			return err
		}
		out.add([]int64{p.SupplierID}, notify.CategoryParticipation, p.BiddingID,
			"Bid received", fmt.Sprintf("Your bid #%d was confirmed", p.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetParticipation(ctx context.Context, id int64) (*models.Participation, error) {
	return s.store.GetParticipation(ctx, id)
}

func (s *Service) ListParticipations(ctx context.Context, biddingID int64) ([]models.Participation, error) {
	if _, err := s.store.GetBidding(ctx, biddingID); err != nil {
		return nil, err
	}
	return s.store.ListParticipations(ctx, biddingID)
}

func (s *Service) ListSupplierParticipations(ctx context.Context, actor *models.Member, limit, offset int) ([]models.Participation, error) {
	return s.store.ListSupplierParticipations(ctx, actor.ID, limit, offset)
}
