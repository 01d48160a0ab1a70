package handlers

import (
	"net/http"

	"bidding/internal/domain"
)

type createEvaluationRequest struct {
	ParticipationID int64 `json:"participationId" validate:"required,gt=0"`
}

type scoresRequest struct {
	PriceScore       int    `json:"priceScore" validate:"min=0,max=100"`
	QualityScore     int    `json:"qualityScore" validate:"min=0,max=100"`
	DeliveryScore    int    `json:"deliveryScore" validate:"min=0,max=100"`
	ReliabilityScore int    `json:"reliabilityScore" validate:"min=0,max=100"`
	Comments         string `json:"comments" validate:"max=2000"`
}

// CreateEvaluationHandler заводит пустую оценку участия от имени эксперта
func (h *Handler) CreateEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req createEvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}

	e, err := h.Service.CreateEvaluation(r.Context(), actor, biddingID, req.ParticipationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// UpdateScoresHandler выставляет баллы; итоговые суммы считаются заново
func (h *Handler) UpdateScoresHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "evaluationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req scoresRequest
	if !h.decode(w, r, &req) {
		return
	}

	scores := domain.Scores{
		Price:       req.PriceScore,
		Quality:     req.QualityScore,
		Delivery:    req.DeliveryScore,
		Reliability: req.ReliabilityScore,
	}
	e, err := h.Service.UpdateScores(r.Context(), actor, id, scores, req.Comments)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) CancelSelectionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "evaluationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.CancelSelection(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ListWinnersHandler возвращает последние выбранные оценки
func (h *Handler) ListWinnersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	list, err := h.Service.ListWinners(r.Context(), params.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) TopScoredHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	params := parsePaginationParams(r)
	list, err := h.Service.ListTopScored(r.Context(), biddingID, params.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SelectAutomaticallyHandler выбирает победителя по наибольшему взвешенному баллу
func (h *Handler) SelectAutomaticallyHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.SelectAutomatically(r.Context(), actor, biddingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) SelectManuallyHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	evaluationID, err := pathID(r, "evaluationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	e, err := h.Service.SelectManually(r.Context(), actor, biddingID, evaluationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
