package domain

import (
	"time"

	"bidding/models"
)

// Срок поставки в днях, если договора ещё нет
const DefaultDeliveryDays = 30

// OrderNumber: PO-20260101-1A2B3C4D. Нумерация не связана с номерами договоров.
func OrderNumber(now time.Time, suffix string) string {
	return OrderNumberPrefix + now.Format("20060102") + "-" + suffix
}

// NewOrder создаёт заказ по победившему участию и помечает участие.
// contract может быть nil.
func NewOrder(b *models.Bidding, p *models.Participation, contract *models.Contract, number string, actorID int64, now time.Time) (*models.Order, *models.StatusHistory, error) {
	if p.BiddingID != b.ID {
		return nil, nil, ErrParticipationNotFound.Withf("participation %d is not part of bidding %d", p.ID, b.ID)
	}
	if !p.Selected {
		return nil, nil, ErrNotWinner.Withf("participation %d", p.ID)
	}
	if p.OrderCreated {
		return nil, nil, ErrOrderExists
	}
	delivery := startOfDay(now).AddDate(0, 0, DefaultDeliveryDays)
	if contract != nil {
		delivery = contract.DeliveryDate
	}
	o := &models.Order{
		BiddingID:            b.ID,
		ParticipationID:      p.ID,
		SupplierID:           p.SupplierID,
		OrderNumber:          number,
		Quantity:             b.Quantity,
		ExpectedDeliveryDate: delivery,
		CreatedBy:            actorID,
		CreatedAt:            now,
		UpdatedAt:            now,
		Price:                p.Price,
	}
	p.OrderCreated = true
	h := &models.StatusHistory{
		EntityType: models.EntityOrder,
		ToStatus:   string(models.OrderPending),
		Reason:     "created",
		ActorID:    actorID,
		CreatedAt:  now,
	}
	return o, h, nil
}

func orderHistory(o *models.Order, from models.OrderStatus, reason string, actorID int64, now time.Time) *models.StatusHistory {
	return &models.StatusHistory{
		EntityType: models.EntityOrder,
		EntityID:   o.ID,
		FromStatus: string(from),
		ToStatus:   string(o.Status()),
		Reason:     reason,
		ActorID:    actorID,
		CreatedAt:  now,
	}
}

// ApproveOrder утверждает заказ один раз, отменить утверждение нельзя.
func ApproveOrder(o *models.Order, approverID int64, now time.Time) (*models.StatusHistory, error) {
	if o.ApprovedAt != nil {
		return nil, ErrAlreadyApproved
	}
	if o.Canceled {
		return nil, ErrInvalidState.Withf("order is canceled")
	}
	from := o.Status()
	o.ApprovedAt = &now
	o.ApprovedBy = &approverID
	o.UpdatedAt = now
	return orderHistory(o, from, "approved", approverID, now), nil
}

// ChangeDeliveryDate возвращает прежнюю дату для текста уведомления.
func ChangeDeliveryDate(o *models.Order, date time.Time, now time.Time) (time.Time, error) {
	if o.Canceled {
		return time.Time{}, ErrInvalidState.Withf("order is canceled")
	}
	if date.IsZero() {
		return time.Time{}, Invalid("delivery date is required")
	}
	old := o.ExpectedDeliveryDate
	o.ExpectedDeliveryDate = date
	o.UpdatedAt = now
	return old, nil
}

// CancelOrder не удаляет заказ, а ставит отметку отмены.
func CancelOrder(o *models.Order, reason string, actorID int64, now time.Time) (*models.StatusHistory, error) {
	if o.ApprovedAt != nil {
		return nil, ErrInvalidState.Withf("approved order cannot be canceled")
	}
	if o.Canceled {
		return nil, ErrInvalidState.Withf("order already canceled")
	}
	from := o.Status()
	o.Canceled = true
	o.CanceledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	return orderHistory(o, from, reason, actorID, now), nil
}
