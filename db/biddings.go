package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

// NextBidSequence выдаёт следующий номер из последовательности объявлений.
func (s *Storage) NextBidSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.get(ctx, &seq, `SELECT nextval('bid_number_seq')`); err != nil {
		return 0, errors.Wrap(err, "failed to read bid number sequence")
	}
	return seq, nil
}

func (s *Storage) CreateBidding(ctx context.Context, b *models.Bidding) error {
	query := `
        INSERT INTO bidding
            (bid_number, title, description, start_date, end_date, quantity,
             unit_price, supply_price, tax, total_price, status, method_code,
             attachments, created_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
             COALESCE($13::text[], '{}'), $14, $15, $16)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		b.BidNumber, b.Title, b.Description, b.StartDate, b.EndDate, b.Quantity,
		b.UnitPrice, b.SupplyPrice, b.Tax, b.TotalPrice, b.Status, b.MethodCode,
		b.Attachments, b.CreatedBy, b.CreatedAt, b.UpdatedAt).
		Scan(&b.ID)
	return mapError(err, "failed to create bidding %s", b.BidNumber)
}

func (s *Storage) GetBidding(ctx context.Context, id int64) (*models.Bidding, error) {
	b := &models.Bidding{}
	if err := s.get(ctx, b, `SELECT * FROM bidding WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrBiddingNotFound, id)
	}
	return b, nil
}

// GetBiddingForUpdate блокирует строку объявления до конца транзакции.
func (s *Storage) GetBiddingForUpdate(ctx context.Context, id int64) (*models.Bidding, error) {
	b := &models.Bidding{}
	if err := s.get(ctx, b, `SELECT * FROM bidding WHERE id=$1 FOR UPDATE`, id); err != nil {
		return nil, notFound(err, domain.ErrBiddingNotFound, id)
	}
	return b, nil
}

func (s *Storage) GetBiddingByNumber(ctx context.Context, number string) (*models.Bidding, error) {
	b := &models.Bidding{}
	if err := s.get(ctx, b, `SELECT * FROM bidding WHERE bid_number=$1`, number); err != nil {
		return nil, notFound(err, domain.ErrBiddingNotFound, number)
	}
	return b, nil
}

func (s *Storage) UpdateBidding(ctx context.Context, b *models.Bidding) error {
	query := `
        UPDATE bidding
        SET title=$1, description=$2, start_date=$3, end_date=$4, quantity=$5,
            unit_price=$6, supply_price=$7, tax=$8, total_price=$9, status=$10,
            method_code=$11, attachments=COALESCE($12::text[], '{}'), updated_at=$13
        WHERE id=$14`
	res, err := s.q.ExecContext(ctx, query,
		b.Title, b.Description, b.StartDate, b.EndDate, b.Quantity,
		b.UnitPrice, b.SupplyPrice, b.Tax, b.TotalPrice, b.Status,
		b.MethodCode, b.Attachments, b.UpdatedAt, b.ID)
	return affected(res, err, domain.ErrBiddingNotFound, b.ID)
}

// DeleteBidding удаляет объявление вместе с его журналом статусов.
func (s *Storage) DeleteBidding(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM status_history WHERE entity_type=$1 AND entity_id=$2`, models.EntityBidding, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete history of bidding %d", id)
	}
	res, err := s.q.ExecContext(ctx, `DELETE FROM bidding WHERE id=$1`, id)
	return affected(res, err, domain.ErrBiddingNotFound, id)
}

// CountBiddingChildren считает зависимые записи, мешающие удалению.
func (s *Storage) CountBiddingChildren(ctx context.Context, id int64) (int, error) {
	var n int
	query := `
        SELECT (SELECT COUNT(1) FROM supplier_invitation WHERE bidding_id=$1)
             + (SELECT COUNT(1) FROM participation WHERE bidding_id=$1)
             + (SELECT COUNT(1) FROM evaluation WHERE bidding_id=$1)
             + (SELECT COUNT(1) FROM contract WHERE bidding_id=$1)
             + (SELECT COUNT(1) FROM purchase_order WHERE bidding_id=$1)`
	if err := s.get(ctx, &n, query, id); err != nil {
		return 0, errors.Wrapf(err, "failed to count children of bidding %d", id)
	}
	return n, nil
}

func (s *Storage) ListBiddings(ctx context.Context, f models.BiddingFilter) ([]models.Bidding, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = %s", f.Status)
	}
	if f.From != nil {
		w.add("start_date >= %s", *f.From)
	}
	if f.To != nil {
		w.add("end_date <= %s", *f.To)
	}
	query := page(`SELECT * FROM bidding`+w.String()+` ORDER BY created_at DESC, id DESC`, f.Limit, f.Offset)

	biddings := []models.Bidding{}
	if err := s.all(ctx, &biddings, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "failed to list biddings")
	}
	return biddings, nil
}
