package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bidding/internal/pricing"
	"bidding/models"
)

var biddingTransitions = map[models.BiddingStatus][]models.BiddingStatus{
	models.BiddingPending: {models.BiddingOngoing, models.BiddingCanceled},
	models.BiddingOngoing: {models.BiddingClosed, models.BiddingCanceled},
}

// BiddingInput содержит данные для создания объявления.
type BiddingInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Quantity    int
	UnitPrice   decimal.Decimal
	MethodCode  string
	Attachments []string
}

// BiddingPatch задает частичное изменение объявления; nil означает "не менять".
type BiddingPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Quantity    *int
	UnitPrice   *decimal.Decimal
	MethodCode  *string
	Attachments []string
}

func ParseBiddingStatus(s string) (models.BiddingStatus, error) {
	st := models.BiddingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrUnknownStatus.Withf("%q", s)
	}
	return st, nil
}

// BidNumber формирует номер объявления вида BID-20260101-0001.
func BidNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("%s%s-%04d", BidNumberPrefix, now.Format("20060102"), seq)
}

func NewBidding(in BiddingInput, bidNumber string, actorID int64, now time.Time) (*models.Bidding, *models.StatusHistory, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, Invalid("title is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, nil, Invalid("endDate must be after startDate")
	}
	b := &models.Bidding{
		BidNumber:   bidNumber,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Quantity:    in.Quantity,
		Status:      models.BiddingPending,
		MethodCode:  in.MethodCode,
		Attachments: in.Attachments,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repriceBidding(b, in.UnitPrice, in.Quantity); err != nil {
		return nil, nil, err
	}
	h := &models.StatusHistory{
		EntityType: models.EntityBidding,
		ToStatus:   string(models.BiddingPending),
		Reason:     "created",
		ActorID:    actorID,
		CreatedAt:  now,
	}
	return b, h, nil
}

// ApplyBiddingPatch меняет поля объявления. Количество нельзя менять,
// если уже поданы предложения: их цены от него зависят.
func ApplyBiddingPatch(b *models.Bidding, p BiddingPatch, hasParticipations bool, now time.Time) error {
	if b.Status.Terminal() {
		return ErrInvalidState.Withf("bidding is %s", b.Status)
	}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return Invalid("title is required")
		}
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if !b.EndDate.After(b.StartDate) {
		return Invalid("endDate must be after startDate")
	}
	if p.MethodCode != nil {
		b.MethodCode = *p.MethodCode
	}
	if p.Attachments != nil {
		b.Attachments = p.Attachments
	}

	quantity, unit := b.Quantity, b.UnitPrice
	if p.Quantity != nil && *p.Quantity != b.Quantity {
		if hasParticipations {
			return ErrInvalidState.Withf("quantity cannot change after bids were submitted")
		}
		quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		unit = *p.UnitPrice
	}
	if err := repriceBidding(b, unit, quantity); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}

func repriceBidding(b *models.Bidding, unit decimal.Decimal, quantity int) error {
	if err := pricing.Reprice(&b.Price, unit, quantity); err != nil {
		return Invalid("%v", err)
	}
	b.Quantity = quantity
	return nil
}

func CanTransitionBidding(from, to models.BiddingStatus) bool {
	for _, next := range biddingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionBidding переводит объявление в новый статус и возвращает запись журнала.
func TransitionBidding(b *models.Bidding, to models.BiddingStatus, reason string, actorID int64, now time.Time) (*models.StatusHistory, error) {
	if !CanTransitionBidding(b.Status, to) {
		return nil, ErrInvalidState.Withf("bidding cannot move from %s to %s", b.Status, to)
	}
	h := &models.StatusHistory{
		EntityType: models.EntityBidding,
		EntityID:   b.ID,
		FromStatus: string(b.Status),
		ToStatus:   string(to),
		Reason:     reason,
		ActorID:    actorID,
		CreatedAt:  now,
	}
	b.Status = to
	b.UpdatedAt = now
	return h, nil
}

// AcceptingBids проверяет, что объявление принимает предложения.
func AcceptingBids(b *models.Bidding, now time.Time) error {
	if b.Status != models.BiddingOngoing {
		return ErrInvalidState.Withf("bidding is %s", b.Status)
	}
	if !now.Before(b.EndDate) {
		return ErrInvalidState.Withf("bidding period ended at %s", b.EndDate.Format(time.RFC3339))
	}
	return nil
}

// SupplierRecipients собирает приглашённых и участвовавших поставщиков без повторов.
func SupplierRecipients(invitations []models.SupplierInvitation, participations []models.Participation) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, inv := range invitations {
		add(inv.SupplierID)
	}
	for _, p := range participations {
		add(p.SupplierID)
	}
	return ids
}
