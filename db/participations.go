package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

func (s *Storage) CreateParticipation(ctx context.Context, p *models.Participation) error {
	query := `
        INSERT INTO participation
            (bidding_id, supplier_id, company_name, unit_price, supply_price, tax,
             total_price, submitted_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		p.BiddingID, p.SupplierID, p.CompanyName, p.UnitPrice, p.SupplyPrice, p.Tax,
		p.TotalPrice, p.SubmittedAt).
		Scan(&p.ID)
	return mapError(err, "failed to create participation of supplier %d", p.SupplierID)
}

func (s *Storage) GetParticipation(ctx context.Context, id int64) (*models.Participation, error) {
	p := &models.Participation{}
	if err := s.get(ctx, p, `SELECT * FROM participation WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrParticipationNotFound, id)
	}
	return p, nil
}

func (s *Storage) UpdateParticipation(ctx context.Context, p *models.Participation) error {
	query := `
        UPDATE participation
        SET unit_price=$1, supply_price=$2, tax=$3, total_price=$4, submitted_at=$5,
            confirmed=$6, confirmed_at=$7, evaluated=$8, order_created=$9,
            selected=$10, selected_at=$11
        WHERE id=$12`
	res, err := s.q.ExecContext(ctx, query,
		p.UnitPrice, p.SupplyPrice, p.Tax, p.TotalPrice, p.SubmittedAt,
		p.Confirmed, p.ConfirmedAt, p.Evaluated, p.OrderCreated,
		p.Selected, p.SelectedAt, p.ID)
	return affected(res, err, domain.ErrParticipationNotFound, p.ID)
}

func (s *Storage) ListParticipations(ctx context.Context, biddingID int64) ([]models.Participation, error) {
	parts := []models.Participation{}
	query := `SELECT * FROM participation WHERE bidding_id=$1 ORDER BY id`
	if err := s.all(ctx, &parts, query, biddingID); err != nil {
		return nil, errors.Wrapf(err, "failed to list participations of bidding %d", biddingID)
	}
	return parts, nil
}

func (s *Storage) ListSupplierParticipations(ctx context.Context, supplierID int64, limit, offset int) ([]models.Participation, error) {
	parts := []models.Participation{}
	query := page(`SELECT * FROM participation WHERE supplier_id=$1 ORDER BY submitted_at DESC, id DESC`, limit, offset)
	if err := s.all(ctx, &parts, query, supplierID); err != nil {
		return nil, errors.Wrapf(err, "failed to list participations of supplier %d", supplierID)
	}
	return parts, nil
}
