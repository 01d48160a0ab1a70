package service

import (
	"context"
	"fmt"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// CreateEvaluation заводит пустую оценку участия от имени эксперта.
func (s *Service) CreateEvaluation(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Evaluation, error) {
	var e *models.Evaluation
	err := s.tx(ctx, func(r Repository, _ *pending) error {
		if _, err := r.GetBiddingForUpdate(ctx, biddingID); err != nil {
			return err
		}
		p, err := r.GetParticipation(ctx, participationID)
		if err != nil {
			return err
		}
		if e, err = domain.NewEvaluation(p, biddingID, actor.ID, s.now()); err != nil {
			return err
		}
		if err := r.CreateEvaluation(ctx, e); err != nil {
			return err
		}
		return r.UpdateParticipation(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateScores(ctx context.Context, actor *models.Member, id int64, scores domain.Scores, comments string) (*models.Evaluation, error) {
	var e *models.Evaluation
	err := s.tx(ctx, func(r Repository, _ *pending) error {
		var err error
		if e, err = lockEvaluation(ctx, r, id); err != nil {
			return err
		}
		if err := domain.UpdateScores(e, scores, comments, s.now()); err != nil {
			return err
		}
		return r.UpdateEvaluation(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CancelSelection снимает выбор победителя; объявление остаётся закрытым.
func (s *Service) CancelSelection(ctx context.Context, actor *models.Member, id int64) (*models.Evaluation, error) {
	var e *models.Evaluation
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if e, err = lockEvaluation(ctx, r, id); err != nil {
			return err
		}
		p, err := r.GetParticipation(ctx, e.ParticipationID)
		if err != nil {
			return err
		}
		if err := domain.CancelSelection(e, p, s.now()); err != nil {
			return err
		}
		if err := r.UpdateEvaluation(ctx, e); err != nil {
			return err
		}
		if err := r.UpdateParticipation(ctx, p); err != nil {
			return err
		}
		out.add([]int64{p.SupplierID}, notify.CategoryEvaluation, e.BiddingID,
			"Selection canceled", fmt.Sprintf("Selection of your bid #%d was canceled", p.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListWinners(ctx context.Context, limit int) ([]models.Evaluation, error) {
	return s.store.ListWinners(ctx, limit)
}

func (s *Service) ListTopScored(ctx context.Context, biddingID int64, limit int) ([]models.Evaluation, error) {
	if _, err := s.store.GetBidding(ctx, biddingID); err != nil {
		return nil, err
	}
	return s.store.ListTopScored(ctx, biddingID, limit)
}
