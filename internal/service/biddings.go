package service

import (
	"context"
	"fmt"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/internal/refcode"
	"bidding/models"
)

func (s *Service) checkMethod(code string) error {
	if !s.codes.Has(refcode.GroupBidMethod, code) {
		return domain.ErrUnknownMethod.Withf("%q", code)
	}
	return nil
}

func (s *Service) CreateBidding(ctx context.Context, actor *models.Member, in domain.BiddingInput) (*models.Bidding, error) {
	if err := s.checkMethod(in.MethodCode); err != nil {
		return nil, err
	}
	var b *models.Bidding
	err := s.tx(ctx, func(r Repository, _ *pending) error {
		seq, err := r.NextBidSequence(ctx)
		if err != nil {
			return err
		}
		now := s.now()
		created, h, err := domain.NewBidding(in, domain.BidNumber(now, seq), actor.ID, now)
		if err != nil {
			return err
		}
		if err := r.CreateBidding(ctx, created); err != nil {
			return err
		}
		b = created
		return s.history(ctx, r, b.ID, h)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBidding(ctx context.Context, id int64) (*models.Bidding, error) {
	return s.store.GetBidding(ctx, id)
}

func (s *Service) GetBiddingByNumber(ctx context.Context, number string) (*models.Bidding, error) {
	return s.store.GetBiddingByNumber(ctx, number)
}

func (s *Service) ListBiddings(ctx context.Context, f models.BiddingFilter) ([]models.Bidding, error) {
	return s.store.ListBiddings(ctx, f)
}

func (s *Service) UpdateBidding(ctx context.Context, actor *models.Member, id int64, patch domain.BiddingPatch) (*models.Bidding, error) {
	if patch.MethodCode != nil {
		if err := s.checkMethod(*patch.MethodCode); err != nil {
			return nil, err
		}
	}
	var b *models.Bidding
	err := s.tx(ctx, func(r Repository, _ *pending) error {
		var err error
		if b, err = r.GetBiddingForUpdate(ctx, id); err != nil {
			return err
		}
		parts, err := r.ListParticipations(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.ApplyBiddingPatch(b, patch, len(parts) > 0, s.now()); err != nil {
			return err
		}
		return r.UpdateBidding(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBidding удаляет объявление, у которого ещё нет зависимых записей.
func (s *Service) DeleteBidding(ctx context.Context, actor *models.Member, id int64) error {
	return s.tx(ctx, func(r Repository, _ *pending) error {
		if _, err := r.GetBiddingForUpdate(ctx, id); err != nil {
			return err
		}
		n, err := r.CountBiddingChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrHasChildren.Withf("bidding %d has %d dependent records", id, n)
		}
		return r.DeleteBidding(ctx, id)
	})
}

// ChangeBiddingStatus переводит объявление по автомату статусов.
// О публикации и закрытии оповещаются приглашённые и участвующие поставщики.
func (s *Service) ChangeBiddingStatus(ctx context.Context, actor *models.Member, id int64, to models.BiddingStatus, reason string) (*models.Bidding, error) {
	var b *models.Bidding
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if b, err = r.GetBiddingForUpdate(ctx, id); err != nil {
			return err
		}
		h, err := domain.TransitionBidding(b, to, reason, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateBidding(ctx, b); err != nil {
			return err
		}
		if err := s.history(ctx, r, b.ID, h); err != nil {
			return err
		}
		if to != models.BiddingOngoing && to != models.BiddingClosed {
			return nil
		}
		invs, err := r.ListInvitations(ctx, id)
		if err != nil {
			return err
		}
		parts, err := r.ListParticipations(ctx, id)
		if err != nil {
			return err
		}
		out.add(domain.SupplierRecipients(invs, parts), notify.CategoryBidding, b.ID,
			fmt.Sprintf("Bidding %s is %s", b.BidNumber, s.codes.Name(refcode.GroupBiddingStatus, string(to))),
			fmt.Sprintf("Bidding %q changed status from %s to %s", b.Title, h.FromStatus, h.ToStatus))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListStatusHistory(ctx context.Context, entity models.EntityType, id int64) ([]models.StatusHistory, error) {
	return s.store.ListStatusHistory(ctx, entity, id)
}
