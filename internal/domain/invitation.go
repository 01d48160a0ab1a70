package domain

import (
	"strings"
	"time"

	"bidding/models"
)

type Decision string

const (
	DecisionParticipate Decision = "PARTICIPATE"
	DecisionReject      Decision = "REJECT"
)

func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DecisionParticipate, DecisionReject:
		return d, nil
	default:
		return "", Invalid("unknown decision %q", s)
	}
}

func NewInvitation(b *models.Bidding, supplier *models.Member, now time.Time) (*models.SupplierInvitation, error) {
	if b.Status.Terminal() {
		return nil, ErrInvalidState.Withf("bidding is %s", b.Status)
	}
	if supplier.Role != models.RoleSupplier {
		return nil, Invalid("member %d is not a supplier", supplier.ID)
	}
	return &models.SupplierInvitation{
		BiddingID:  b.ID,
		SupplierID: supplier.ID,
		CreatedAt:  now,
	}, nil
}

// RespondInvitation фиксирует ответ поставщика. Флаги участия и отказа
// взаимоисключающие: установка одного сбрасывает другой.
func RespondInvitation(inv *models.SupplierInvitation, b *models.Bidding, supplierID int64, d Decision, reason string, now time.Time) error {
	if inv.SupplierID != supplierID {
		return ErrForbidden.Withf("invitation belongs to another supplier")
	}
	if b.Status.Terminal() {
		return ErrInvalidState.Withf("bidding is %s", b.Status)
	}
	switch d {
	case DecisionParticipate:
		if inv.Participating {
			return ErrAlreadyResponded
		}
		inv.Participating = true
		inv.ParticipatingAt = &now
		inv.Rejected = false
		inv.RejectedAt = nil
		inv.RejectReason = ""
	case DecisionReject:
		if inv.Rejected {
			return ErrAlreadyResponded
		}
		if strings.TrimSpace(reason) == "" {
			return Invalid("reject reason is required")
		}
		inv.Rejected = true
		inv.RejectedAt = &now
		inv.RejectReason = reason
		inv.Participating = false
		inv.ParticipatingAt = nil
	default:
		return Invalid("unknown decision %q", d)
	}
	return nil
}

// MarkInvitationNotified выставляется только после успешной доставки уведомления.
func MarkInvitationNotified(inv *models.SupplierInvitation, now time.Time) {
	inv.NotificationSent = true
	inv.NotificationSentAt = &now
}
