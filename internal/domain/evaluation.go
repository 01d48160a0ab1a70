package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"bidding/models"
)

// Веса критериев для взвешенной оценки.
var (
	PriceWeight       = decimal.RequireFromString("0.3")
	QualityWeight     = decimal.RequireFromString("0.4")
	DeliveryWeight    = decimal.RequireFromString("0.2")
	ReliabilityWeight = decimal.RequireFromString("0.1")
)

const (
	MinScore = 0
	MaxScore = 100
)

type Scores struct {
	Price       int
	Quality     int
	Delivery    int
	Reliability int
}

func (s Scores) Validate() error {
	for _, v := range []int{s.Price, s.Quality, s.Delivery, s.Reliability} {
		if v < MinScore || v > MaxScore {
			return ErrInvalidScore.Withf("got %d", v)
		}
	}
	return nil
}

// Total считает среднее арифметическое четырёх оценок.
func (s Scores) Total() decimal.Decimal {
	sum := decimal.NewFromInt(int64(s.Price + s.Quality + s.Delivery + s.Reliability))
	return sum.Div(decimal.NewFromInt(4)).Round(2)
}

func (s Scores) Weighted() decimal.Decimal {
	return decimal.NewFromInt(int64(s.Price)).Mul(PriceWeight).
		Add(decimal.NewFromInt(int64(s.Quality)).Mul(QualityWeight)).
		Add(decimal.NewFromInt(int64(s.Delivery)).Mul(DeliveryWeight)).
		Add(decimal.NewFromInt(int64(s.Reliability)).Mul(ReliabilityWeight)).
		Round(2)
}

func ScoresOf(e *models.Evaluation) Scores {
	return Scores{
		Price:       e.PriceScore,
		Quality:     e.QualityScore,
		Delivery:    e.DeliveryScore,
		Reliability: e.ReliabilityScore,
	}
}

// NewEvaluation создаёт пустую оценку и помечает участие как оценённое.
func NewEvaluation(p *models.Participation, biddingID, evaluatorID int64, now time.Time) (*models.Evaluation, error) {
	if p.BiddingID != biddingID {
		return nil, ErrParticipationNotFound.Withf("participation %d is not part of bidding %d", p.ID, biddingID)
	}
	e := &models.Evaluation{
		BiddingID:       biddingID,
		ParticipationID: p.ID,
		EvaluatorID:     evaluatorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	recompute(e)
	p.Evaluated = true
	return e, nil
}

// UpdateScores перезаписывает оценки; выбранная победителем оценка заблокирована.
func UpdateScores(e *models.Evaluation, s Scores, comments string, now time.Time) error {
	if e.Selected {
		return ErrLockedForEdit
	}
	if err := s.Validate(); err != nil {
		return err
	}
	e.PriceScore = s.Price
	e.QualityScore = s.Quality
	e.DeliveryScore = s.Delivery
	e.ReliabilityScore = s.Reliability
	e.Comments = comments
	e.UpdatedAt = now
	recompute(e)
	return nil
}

func recompute(e *models.Evaluation) {
	s := ScoresOf(e)
	e.TotalScore = s.Total()
	e.WeightedScore = s.Weighted()
}
