package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

func (s *Storage) CreateContract(ctx context.Context, c *models.Contract) error {
	query := `
        INSERT INTO contract
            (bidding_id, participation_id, supplier_id, transaction_number, start_date,
             end_date, delivery_date, quantity, unit_price, supply_price, tax, total_price,
             status, created_by, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		c.BiddingID, c.ParticipationID, c.SupplierID, c.TransactionNumber, c.StartDate,
		c.EndDate, c.DeliveryDate, c.Quantity, c.UnitPrice, c.SupplyPrice, c.Tax, c.TotalPrice,
		c.Status, c.CreatedBy, c.CreatedAt, c.UpdatedAt).
		Scan(&c.ID)
	return mapError(err, "failed to create contract %s", c.TransactionNumber)
}

func (s *Storage) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	c := &models.Contract{}
	if err := s.get(ctx, c, `SELECT * FROM contract WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrContractNotFound, id)
	}
	return c, nil
}

// GetContractForUpdate блокирует строку договора до конца транзакции.
func (s *Storage) GetContractForUpdate(ctx context.Context, id int64) (*models.Contract, error) {
	c := &models.Contract{}
	if err := s.get(ctx, c, `SELECT * FROM contract WHERE id=$1 FOR UPDATE`, id); err != nil {
		return nil, notFound(err, domain.ErrContractNotFound, id)
	}
	return c, nil
}

// FindActiveContract возвращает последний неотменённый договор по участию или nil.
func (s *Storage) FindActiveContract(ctx context.Context, participationID int64) (*models.Contract, error) {
	contracts := []models.Contract{}
	query := `
        SELECT * FROM contract
        WHERE participation_id=$1 AND status <> $2
        ORDER BY id DESC
        LIMIT 1`
	if err := s.all(ctx, &contracts, query, participationID, models.ContractCanceled); err != nil {
		return nil, errors.Wrapf(err, "failed to find contract of participation %d", participationID)
	}
	if len(contracts) == 0 {
		return nil, nil
	}
	return &contracts[0], nil
}

func (s *Storage) UpdateContract(ctx context.Context, c *models.Contract) error {
	query := `
        UPDATE contract
        SET start_date=$1, end_date=$2, delivery_date=$3, quantity=$4,
            unit_price=$5, supply_price=$6, tax=$7, total_price=$8,
            buyer_signature=$9, buyer_signed_at=$10, buyer_signed_by=$11,
            supplier_signature=$12, supplier_signed_at=$13, supplier_signed_by=$14,
            status=$15, cancel_reason=$16, updated_at=$17
        WHERE id=$18`
	res, err := s.q.ExecContext(ctx, query,
		c.StartDate, c.EndDate, c.DeliveryDate, c.Quantity,
		c.UnitPrice, c.SupplyPrice, c.Tax, c.TotalPrice,
		c.BuyerSignature, c.BuyerSignedAt, c.BuyerSignedBy,
		c.SupplierSignature, c.SupplierSignedAt, c.SupplierSignedBy,
		c.Status, c.CancelReason, c.UpdatedAt, c.ID)
	return affected(res, err, domain.ErrContractNotFound, c.ID)
}

func (s *Storage) ListContracts(ctx context.Context, f models.ContractFilter) ([]models.Contract, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = %s", f.Status)
	}
	if f.SupplierID != 0 {
		w.add("supplier_id = %s", f.SupplierID)
	}
	if f.BiddingID != 0 {
		w.add("bidding_id = %s", f.BiddingID)
	}
	if f.ExpiresBefore != nil {
		w.add("end_date <= %s", *f.ExpiresBefore)
		if f.Status == "" {
			w.addRaw("status IN ('DRAFT', 'IN_PROGRESS')")
		}
	}
	query := page(`SELECT * FROM contract`+w.String()+` ORDER BY end_date ASC, id ASC`, f.Limit, f.Offset)

	contracts := []models.Contract{}
	if err := s.all(ctx, &contracts, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "failed to list contracts")
	}
	return contracts, nil
}
