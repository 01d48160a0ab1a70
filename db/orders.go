package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

func (s *Storage) CreateOrder(ctx context.Context, o *models.Order) error {
	query := `
        INSERT INTO purchase_order
            (bidding_id, participation_id, supplier_id, order_number, quantity,
             unit_price, supply_price, tax, total_price, expected_delivery_date,
             created_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		o.BiddingID, o.ParticipationID, o.SupplierID, o.OrderNumber, o.Quantity,
		o.UnitPrice, o.SupplyPrice, o.Tax, o.TotalPrice, o.ExpectedDeliveryDate,
		o.CreatedBy, o.CreatedAt, o.UpdatedAt).
		Scan(&o.ID)
	return mapError(err, "failed to create order %s", o.OrderNumber)
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o := &models.Order{}
	if err := s.get(ctx, o, `SELECT * FROM purchase_order WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound, id)
	}
	return o, nil
}

// GetOrderForUpdate блокирует строку заказа до конца транзакции.
func (s *Storage) GetOrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	o := &models.Order{}
	if err := s.get(ctx, o, `SELECT * FROM purchase_order WHERE id=$1 FOR UPDATE`, id); err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound, id)
	}
	return o, nil
}

func (s *Storage) UpdateOrder(ctx context.Context, o *models.Order) error {
	query := `
        UPDATE purchase_order
        SET expected_delivery_date=$1, approved_at=$2, approved_by=$3,
            canceled=$4, canceled_at=$5, cancel_reason=$6, updated_at=$7
        WHERE id=$8`
	res, err := s.q.ExecContext(ctx, query,
		o.ExpectedDeliveryDate, o.ApprovedAt, o.ApprovedBy,
		o.Canceled, o.CanceledAt, o.CancelReason, o.UpdatedAt, o.ID)
	return affected(res, err, domain.ErrOrderNotFound, o.ID)
}

func (s *Storage) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	w := &where{}
	switch f.Status {
	case models.OrderPending:
		w.addRaw("NOT canceled AND approved_at IS NULL")
	case models.OrderApproved:
		w.addRaw("NOT canceled AND approved_at IS NOT NULL")
	case models.OrderCanceled:
		w.addRaw("canceled")
	}
	if f.SupplierID != 0 {
		w.add("supplier_id = %s", f.SupplierID)
	}
	if f.BiddingID != 0 {
		w.add("bidding_id = %s", f.BiddingID)
	}
	query := page(`SELECT * FROM purchase_order`+w.String()+` ORDER BY created_at DESC, id DESC`, f.Limit, f.Offset)

	orders := []models.Order{}
	if err := s.all(ctx, &orders, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}
