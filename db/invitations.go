package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

func (s *Storage) CreateInvitation(ctx context.Context, inv *models.SupplierInvitation) error {
	query := `
        INSERT INTO supplier_invitation (bidding_id, supplier_id, created_at)
        VALUES ($1, $2, $3)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query, inv.BiddingID, inv.SupplierID, inv.CreatedAt).Scan(&inv.ID)
	return mapError(err, "failed to invite supplier %d", inv.SupplierID)
}

func (s *Storage) GetInvitation(ctx context.Context, id int64) (*models.SupplierInvitation, error) {
	inv := &models.SupplierInvitation{}
	if err := s.get(ctx, inv, `SELECT * FROM supplier_invitation WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrInvitationNotFound, id)
	}
	return inv, nil
}

// FindInvitation возвращает приглашение поставщика или nil, если его нет.
func (s *Storage) FindInvitation(ctx context.Context, biddingID, supplierID int64) (*models.SupplierInvitation, error) {
	invs := []models.SupplierInvitation{}
	query := `SELECT * FROM supplier_invitation WHERE bidding_id=$1 AND supplier_id=$2`
	if err := s.all(ctx, &invs, query, biddingID, supplierID); err != nil {
		return nil, errors.Wrap(err, "failed to find invitation")
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return &invs[0], nil
}

func (s *Storage) UpdateInvitation(ctx context.Context, inv *models.SupplierInvitation) error {
	query := `
        UPDATE supplier_invitation
        SET notification_sent=$1, notification_sent_at=$2,
            participating=$3, participating_at=$4,
            rejected=$5, rejected_at=$6, reject_reason=$7
        WHERE id=$8`
	res, err := s.q.ExecContext(ctx, query,
		inv.NotificationSent, inv.NotificationSentAt,
		inv.Participating, inv.ParticipatingAt,
		inv.Rejected, inv.RejectedAt, inv.RejectReason, inv.ID)
	return affected(res, err, domain.ErrInvitationNotFound, inv.ID)
}

// MarkInvitationNotified выставляет только признак доставки, не трогая ответ поставщика.
func (s *Storage) MarkInvitationNotified(ctx context.Context, inv *models.SupplierInvitation) error {
	query := `UPDATE supplier_invitation SET notification_sent=$1, notification_sent_at=$2 WHERE id=$3`
	res, err := s.q.ExecContext(ctx, query, inv.NotificationSent, inv.NotificationSentAt, inv.ID)
	return affected(res, err, domain.ErrInvitationNotFound, inv.ID)
}

func (s *Storage) ListInvitations(ctx context.Context, biddingID int64) ([]models.SupplierInvitation, error) {
	invs := []models.SupplierInvitation{}
	query := `SELECT * FROM supplier_invitation WHERE bidding_id=$1 ORDER BY id`
	if err := s.all(ctx, &invs, query, biddingID); err != nil {
		return nil, errors.Wrapf(err, "failed to list invitations of bidding %d", biddingID)
	}
	return invs, nil
}
