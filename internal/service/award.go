package service

import (
	"context"
	"fmt"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// SelectAutomatically выбирает победителем оценку с наибольшим взвешенным баллом.
func (s *Service) SelectAutomatically(ctx context.Context, actor *models.Member, biddingID int64) (*models.Evaluation, error) {
	return s.award(ctx, actor, biddingID, func(evals []models.Evaluation) (int64, error) {
		w, err := domain.PickWinner(evals)
		if err != nil {
			return 0, err
		}
		return w.ID, nil
	})
}

// SelectManually назначает победителем указанную оценку.
func (s *Service) SelectManually(ctx context.Context, actor *models.Member, biddingID, evaluationID int64) (*models.Evaluation, error) {
	return s.award(ctx, actor, biddingID, func([]models.Evaluation) (int64, error) {
		return evaluationID, nil
	})
}

// award выполняется под блокировкой строки объявления, поэтому
// параллельные выборы по одному объявлению идут строго по очереди.
func (s *Service) award(ctx context.Context, actor *models.Member, biddingID int64, pick func([]models.Evaluation) (int64, error)) (*models.Evaluation, error) {
	var winner *models.Evaluation
	err := s.tx(ctx, func(r Repository, out *pending) error {
		b, err := r.GetBiddingForUpdate(ctx, biddingID)
		if err != nil {
			return err
		}
		if b.Status == models.BiddingCanceled {
			return domain.ErrInvalidState.Withf("bidding is %s", b.Status)
		}
		evals, err := r.ListEvaluations(ctx, biddingID)
		if err != nil {
			return err
		}
		if len(evals) == 0 {
			return domain.ErrNoEvaluations
		}
		winnerID, err := pick(evals)
		if err != nil {
			return err
		}
		parts, err := r.ListParticipations(ctx, biddingID)
		if err != nil {
			return err
		}
		now := s.now()
		ch, err := domain.Award(evals, parts, winnerID, now)
		if err != nil {
			return err
		}
		winner = ch.Winner
		if ch.Unchanged {
			return nil
		}

		for _, e := range ch.Evaluations {
			if err := r.UpdateEvaluation(ctx, e); err != nil {
				return err
			}
		}
		for _, p := range ch.Participations {
			if err := r.UpdateParticipation(ctx, p); err != nil {
				return err
			}
		}
		if b.Status != models.BiddingClosed {
			h, err := domain.TransitionBidding(b, models.BiddingClosed, "winner selected", actor.ID, now)
			if err != nil {
				return err
			}
			if err := r.UpdateBidding(ctx, b); err != nil {
				return err
			}
			if err := s.history(ctx, r, b.ID, h); err != nil {
				return err
			}
		}

		wp := ch.WinnerPart
		out.add([]int64{wp.SupplierID}, notify.CategoryEvaluation, b.ID,
			fmt.Sprintf("Your bid on %s won", b.BidNumber),
			fmt.Sprintf("Your bid on %q was selected", b.Title))
		var losers []int64
		for _, p := range parts {
			if p.SupplierID != wp.SupplierID {
				losers = append(losers, p.SupplierID)
			}
		}
		out.add(recipients(losers...), notify.CategoryEvaluation, b.ID,
			fmt.Sprintf("Bidding %s result", b.BidNumber),
			fmt.Sprintf("Another bid was selected for %q", b.Title))
		out.add([]int64{b.CreatedBy}, notify.CategoryEvaluation, b.ID,
			fmt.Sprintf("Winner selected for %s", b.BidNumber),
			fmt.Sprintf("%s won with weighted score %s", wp.CompanyName, winner.WeightedScore.StringFixed(2)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return winner, nil
}
