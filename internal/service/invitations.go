package service

import (
	"context"
	"fmt"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// Invite приглашает поставщика. Признак notification_sent выставляется
// только после того, как канал доставки подтвердит отправку.
func (s *Service) Invite(ctx context.Context, actor *models.Member, biddingID, supplierID int64) (*models.SupplierInvitation, error) {
	var (
		inv *models.SupplierInvitation
		b   *models.Bidding
	)
	err := s.store.InTx(ctx, func(r Repository) error {
		var err error
		if b, err = r.GetBidding(ctx, biddingID); err != nil {
			return err
		}
		supplier, err := r.GetMember(ctx, supplierID)
		if err != nil {
			return err
		}
		if inv, err = domain.NewInvitation(b, supplier, s.now()); err != nil {
			return err
		}
		return r.CreateInvitation(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	invitationID := inv.ID
	s.notifier.Notify(ctx, notify.Message{
		RecipientID: supplierID,
		Title:       fmt.Sprintf("Invitation to bidding %s", b.BidNumber),
		Content:     fmt.Sprintf("You are invited to bid on %q until %s", b.Title, b.EndDate.Format("2006-01-02")),
		RelatedID:   b.ID,
		Category:    notify.CategoryInvitation,
		OnDelivered: func(ctx context.Context) {
			s.markNotified(ctx, invitationID)
		},
	})
	return inv, nil
}

func (s *Service) markNotified(ctx context.Context, invitationID int64) {
	err := s.store.InTx(ctx, func(r Repository) error {
		inv, err := r.GetInvitation(ctx, invitationID)
		if err != nil {
			return err
		}
		domain.MarkInvitationNotified(inv, s.now())
		return r.MarkInvitationNotified(ctx, inv)
	})
	if err != nil {
		s.log.WithError(err).WithField("invitation", invitationID).Error("failed to mark invitation as notified")
	}
}

// RespondInvitation фиксирует решение поставщика и оповещает автора объявления.
func (s *Service) RespondInvitation(ctx context.Context, actor *models.Member, invitationID int64, d domain.Decision, reason string) (*models.SupplierInvitation, error) {
	var inv *models.SupplierInvitation
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if inv, err = r.GetInvitation(ctx, invitationID); err != nil {
			return err
		}
		b, err := r.GetBidding(ctx, inv.BiddingID)
		if err != nil {
			return err
		}
		if err := domain.RespondInvitation(inv, b, actor.ID, d, reason, s.now()); err != nil {
			return err
		}
		if err := r.UpdateInvitation(ctx, inv); err != nil {
			return err
		}
		content := fmt.Sprintf("%s will participate in %q", actor.Name, b.Title)
		if d == domain.DecisionReject {
			content = fmt.Sprintf("%s declined %q: %s", actor.Name, b.Title, reason)
		}
		out.add([]int64{b.CreatedBy}, notify.CategoryInvitation, b.ID,
			fmt.Sprintf("Invitation to %s answered", b.BidNumber), content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListInvitations(ctx context.Context, biddingID int64) ([]models.SupplierInvitation, error) {
	if _, err := s.store.GetBidding(ctx, biddingID); err != nil {
		return nil, err
	}
	return s.store.ListInvitations(ctx, biddingID)
}
