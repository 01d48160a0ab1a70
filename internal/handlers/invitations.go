package handlers

import (
	"net/http"

	"bidding/internal/domain"
)

type inviteRequest struct {
	SupplierID int64 `json:"supplierId" validate:"required,gt=0"`
}

type respondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=PARTICIPATE REJECT participate reject"`
	Reason   string `json:"reason" validate:"max=1000"`
}

// InviteHandler приглашает поставщика к закупке
func (h *Handler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req inviteRequest
	if !h.decode(w, r, &req) {
		return
	}

	inv, err := h.Service.Invite(r.Context(), actor, biddingID, req.SupplierID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *Handler) ListInvitationsHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.Service.ListInvitations(r.Context(), biddingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// RespondInvitationHandler принимает решение поставщика: участвовать или отказаться
func (h *Handler) RespondInvitationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "invitationId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req respondRequest
	if !h.decode(w, r, &req) {
		return
	}
	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	inv, err := h.Service.RespondInvitation(r.Context(), actor, id, decision, req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
