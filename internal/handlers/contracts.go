package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bidding/internal/domain"
	"bidding/models"
)

type awardedRequest struct {
	ParticipationID int64 `json:"participationId" validate:"required,gt=0"`
}

type signRequest struct {
	Signature string `json:"signature" validate:"required,max=4000"`
}

type editContractRequest struct {
	StartDate    *time.Time       `json:"startDate"`
	EndDate      *time.Time       `json:"endDate"`
	DeliveryDate *time.Time       `json:"deliveryDate"`
	Quantity     *int             `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
}

// queryID читает необязательный id из query; пустое значение дает 0
func queryID(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("invalid %s", name)
	}
	return id, nil
}

// DraftContractHandler составляет черновик договора с победителем
func (h *Handler) DraftContractHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req awardedRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.Service.DraftContract(r.Context(), actor, biddingID, req.ParticipationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.contract(c))
}

// ListContractsHandler фильтрует по статусу, поставщику, объявлению и сроку окончания
func (h *Handler) ListContractsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	f := models.ContractFilter{Limit: params.Limit, Offset: params.Offset}

	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = models.ContractStatus(strings.ToUpper(strings.TrimSpace(s)))
		if !f.Status.Valid() {
			h.fail(w, r, domain.ErrUnknownStatus.Withf("%q", s))
			return
		}
	}
	var err error
	if f.SupplierID, err = queryID(r, "supplierId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.BiddingID, err = queryID(r, "biddingId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.ExpiresBefore, err = parseTimeParam(r, "expiresBefore"); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.Service.ListContracts(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.contracts(list))
}

func (h *Handler) GetContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.Service.GetContract(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.contract(c))
}

func (h *Handler) StartContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	c, err := h.Service.StartContract(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.contract(c))
}

// SignContractHandler подписывает договор за одну из сторон.
// Когда есть обе подписи, договор закрывается.
func (h *Handler) SignContractHandler(party domain.Party) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "contractId")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}
		var req signRequest
		if !h.decode(w, r, &req) {
			return
		}

		c, err := h.Service.SignContract(r.Context(), actor, id, party, req.Signature)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.contract(c))
	}
}

func (h *Handler) EditContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req editContractRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.Service.UpdateContract(r.Context(), actor, id, domain.ContractPatch{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		DeliveryDate: req.DeliveryDate,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.contract(c))
}

func (h *Handler) CancelContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	c, err := h.Service.CancelContract(r.Context(), actor, id, r.URL.Query().Get("reason"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.contract(c))
}
