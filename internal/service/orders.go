package service

import (
	"context"
	"fmt"
	"time"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// CreateOrder оформляет заказ по победившему участию. Срок поставки берётся
// из действующего договора, если он уже составлен.
func (s *Service) CreateOrder(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Order, error) {
	var o *models.Order
	err := s.tx(ctx, func(r Repository, out *pending) error {
		b, err := r.GetBiddingForUpdate(ctx, biddingID)
		if err != nil {
			return err
		}
		p, err := r.GetParticipation(ctx, participationID)
		if err != nil {
			return err
		}
		contract, err := r.FindActiveContract(ctx, participationID)
		if err != nil {
			return err
		}
		now := s.now()
		var h *models.StatusHistory
		o, h, err = domain.NewOrder(b, p, contract, domain.OrderNumber(now, s.suffix()), actor.ID, now)
		if err != nil {
			return err
		}
		if err := r.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := r.UpdateParticipation(ctx, p); err != nil {
			return err
		}
		if err := s.history(ctx, r, o.ID, h); err != nil {
			return err
		}
		out.add([]int64{o.SupplierID}, notify.CategoryOrder, o.ID,
			fmt.Sprintf("Purchase order %s", o.OrderNumber),
			fmt.Sprintf("Order for %q, delivery by %s", b.Title, o.ExpectedDeliveryDate.Format("2006-01-02")))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ApproveOrder(ctx context.Context, actor *models.Member, id int64) (*models.Order, error) {
	return s.changeOrder(ctx, id, func(r Repository, o *models.Order, out *pending) error {
		h, err := domain.ApproveOrder(o, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out.add(recipients(o.SupplierID, o.CreatedBy), notify.CategoryOrder, o.ID,
			fmt.Sprintf("Order %s approved", o.OrderNumber),
			fmt.Sprintf("Approved by %s", actor.Name))
		return s.history(ctx, r, o.ID, h)
	})
}

// UpdateDeliveryDate переносит срок поставки и сообщает прежнюю и новую даты.
func (s *Service) UpdateDeliveryDate(ctx context.Context, actor *models.Member, id int64, date time.Time) (*models.Order, error) {
	return s.changeOrder(ctx, id, func(r Repository, o *models.Order, out *pending) error {
		old, err := domain.ChangeDeliveryDate(o, date, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out.add(others(actor.ID, o.SupplierID, o.CreatedBy), notify.CategoryOrder, o.ID,
			fmt.Sprintf("Order %s delivery date changed", o.OrderNumber),
			fmt.Sprintf("Delivery date moved from %s to %s", old.Format("2006-01-02"), date.Format("2006-01-02")))
		return nil
	})
}

func (s *Service) CancelOrder(ctx context.Context, actor *models.Member, id int64, reason string) (*models.Order, error) {
	return s.changeOrder(ctx, id, func(r Repository, o *models.Order, out *pending) error {
		h, err := domain.CancelOrder(o, reason, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out.add(recipients(o.SupplierID, o.CreatedBy), notify.CategoryOrder, o.ID,
			fmt.Sprintf("Order %s canceled", o.OrderNumber), reason)
		return s.history(ctx, r, o.ID, h)
	})
}

func (s *Service) changeOrder(ctx context.Context, id int64, fn func(r Repository, o *models.Order, out *pending) error) (*models.Order, error) {
	var o *models.Order
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if o, err = r.GetOrderForUpdate(ctx, id); err != nil {
			return err
		}
		return fn(r, o, out)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	return s.store.ListOrders(ctx, f)
}
