package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type priceRequest struct {
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SubmitParticipationHandler подает ценовое предложение поставщика
func (h *Handler) SubmitParticipationHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.Service.SubmitParticipation(r.Context(), actor, biddingID, req.UnitPrice)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListParticipationsHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.Service.ListParticipations(r.Context(), biddingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MyParticipationsHandler возвращает предложения текущего поставщика
func (h *Handler) MyParticipationsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	list, err := h.Service.ListSupplierParticipations(r.Context(), actor, params.Limit, params.Offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetParticipationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "participationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Service.GetParticipation(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) RepriceParticipationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "participationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.Service.RepriceParticipation(r.Context(), actor, id, req.UnitPrice)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ConfirmParticipationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "participationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	p, err := h.Service.ConfirmParticipation(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
