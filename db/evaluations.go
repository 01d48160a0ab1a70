package db

import (
	"context"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/models"
)

func (s *Storage) CreateEvaluation(ctx context.Context, e *models.Evaluation) error {
	query := `
        INSERT INTO evaluation
            (bidding_id, participation_id, evaluator_id, total_score, weighted_score,
             created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		e.BiddingID, e.ParticipationID, e.EvaluatorID, e.TotalScore, e.WeightedScore,
		e.CreatedAt, e.UpdatedAt).
		Scan(&e.ID)
	return mapError(err, "failed to create evaluation of participation %d", e.ParticipationID)
}

func (s *Storage) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	e := &models.Evaluation{}
	if err := s.get(ctx, e, `SELECT * FROM evaluation WHERE id=$1`, id); err != nil {
		return nil, notFound(err, domain.ErrEvaluationNotFound, id)
	}
	return e, nil
}

func (s *Storage) UpdateEvaluation(ctx context.Context, e *models.Evaluation) error {
	query := `
        UPDATE evaluation
        SET price_score=$1, quality_score=$2, delivery_score=$3, reliability_score=$4,
            total_score=$5, weighted_score=$6, comments=$7, selected=$8, selected_at=$9,
            updated_at=$10
        WHERE id=$11`
	res, err := s.q.ExecContext(ctx, query,
		e.PriceScore, e.QualityScore, e.DeliveryScore, e.ReliabilityScore,
		e.TotalScore, e.WeightedScore, e.Comments, e.Selected, e.SelectedAt,
		e.UpdatedAt, e.ID)
	return affected(res, err, domain.ErrEvaluationNotFound, e.ID)
}

func (s *Storage) ListEvaluations(ctx context.Context, biddingID int64) ([]models.Evaluation, error) {
	evals := []models.Evaluation{}
	query := `SELECT * FROM evaluation WHERE bidding_id=$1 ORDER BY id`
	if err := s.all(ctx, &evals, query, biddingID); err != nil {
		return nil, errors.Wrapf(err, "failed to list evaluations of bidding %d", biddingID)
	}
	return evals, nil
}

// ListWinners возвращает выбранные оценки, новые первыми.
func (s *Storage) ListWinners(ctx context.Context, limit int) ([]models.Evaluation, error) {
	evals := []models.Evaluation{}
	query := page(`SELECT * FROM evaluation WHERE selected ORDER BY selected_at DESC, id DESC`, limit, 0)
	if err := s.all(ctx, &evals, query); err != nil {
		return nil, errors.Wrap(err, "failed to list winners")
	}
	return evals, nil
}

func (s *Storage) ListTopScored(ctx context.Context, biddingID int64, limit int) ([]models.Evaluation, error) {
	evals := []models.Evaluation{}
	query := page(`SELECT * FROM evaluation WHERE bidding_id=$1 ORDER BY weighted_score DESC, id ASC`, limit, 0)
	if err := s.all(ctx, &evals, query, biddingID); err != nil {
		return nil, errors.Wrapf(err, "failed to list top evaluations of bidding %d", biddingID)
	}
	return evals, nil
}
