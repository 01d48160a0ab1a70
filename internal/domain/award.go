package domain

import (
	"time"

	"bidding/models"
)

// AwardChanges собирает записи, изменённые выбором победителя.
// Снятия выбора идут раньше установки нового: так их и нужно сохранять.
type AwardChanges struct {
	Winner         *models.Evaluation
	WinnerPart     *models.Participation
	Evaluations    []*models.Evaluation
	Participations []*models.Participation
	Unchanged      bool
}

// PickWinner выбирает оценку с наибольшим взвешенным баллом.
// При равенстве побеждает оценка с меньшим id, то есть созданная раньше.
func PickWinner(evals []models.Evaluation) (*models.Evaluation, error) {
	if len(evals) == 0 {
		return nil, ErrNoEvaluations
	}
	best := &evals[0]
	for i := 1; i < len(evals); i++ {
		e := &evals[i]
		switch e.WeightedScore.Cmp(best.WeightedScore) {
		case 1:
			best = e
		case 0:
			if e.ID < best.ID {
				best = e
			}
		}
	}
	return best, nil
}

// Award снимает прежний выбор и отмечает победителем оценку winnerID вместе с её участием.
func Award(evals []models.Evaluation, parts []models.Participation, winnerID int64, now time.Time) (*AwardChanges, error) {
	if len(evals) == 0 {
		return nil, ErrNoEvaluations
	}
	var winner *models.Evaluation
	for i := range evals {
		if evals[i].ID == winnerID {
			winner = &evals[i]
		}
	}
	if winner == nil {
		return nil, ErrEvaluationNotFound.Withf("evaluation %d is not part of this bidding", winnerID)
	}
	var winnerPart *models.Participation
	for i := range parts {
		if parts[i].ID == winner.ParticipationID {
			winnerPart = &parts[i]
		}
	}
	if winnerPart == nil {
		return nil, ErrParticipationNotFound.Withf("participation %d", winner.ParticipationID)
	}

	ch := &AwardChanges{Winner: winner, WinnerPart: winnerPart}
	for i := range evals {
		e := &evals[i]
		if e.Selected && e.ID != winner.ID {
			e.Selected = false
			e.SelectedAt = nil
			e.UpdatedAt = now
			ch.Evaluations = append(ch.Evaluations, e)
		}
	}
	for i := range parts {
		p := &parts[i]
		if p.Selected && p.ID != winnerPart.ID {
			p.Selected = false
			p.SelectedAt = nil
			ch.Participations = append(ch.Participations, p)
		}
	}

	if winner.Selected && winnerPart.Selected && len(ch.Evaluations) == 0 && len(ch.Participations) == 0 {
		ch.Unchanged = true
		return ch, nil
	}
	if !winner.Selected {
		winner.Selected = true
		winner.SelectedAt = &now
		winner.UpdatedAt = now
		ch.Evaluations = append(ch.Evaluations, winner)
	}
	if !winnerPart.Selected {
		winnerPart.Selected = true
		winnerPart.SelectedAt = &now
		ch.Participations = append(ch.Participations, winnerPart)
	}
	return ch, nil
}

// CancelSelection снимает отметку победителя с оценки и её участия.
func CancelSelection(e *models.Evaluation, p *models.Participation, now time.Time) error {
	if !e.Selected {
		return ErrInvalidState.Withf("evaluation %d is not selected", e.ID)
	}
	e.Selected = false
	e.SelectedAt = nil
	e.UpdatedAt = now
	if p != nil {
		p.Selected = false
		p.SelectedAt = nil
	}
	return nil
}
