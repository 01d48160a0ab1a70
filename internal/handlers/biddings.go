package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bidding/internal/domain"
	"bidding/models"
)

type createBiddingRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	StartDate   time.Time       `json:"startDate" validate:"required"`
	EndDate     time.Time       `json:"endDate" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	MethodCode  string          `json:"methodCode" validate:"required"`
	Attachments []string        `json:"attachments" validate:"omitempty,dive,max=500"`
}

type editBiddingRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	MethodCode  *string          `json:"methodCode" validate:"omitempty,min=1"`
	Attachments []string         `json:"attachments" validate:"omitempty,dive,max=500"`
}

// parseTimeParam принимает RFC3339 или дату в формате 2006-01-02
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid("invalid %s %q", name, v)
}

// CreateBiddingHandler создает объявление о закупке в статусе PENDING
func (h *Handler) CreateBiddingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req createBiddingRequest
	if !h.decode(w, r, &req) {
		return
	}

	b, err := h.Service.CreateBidding(r.Context(), actor, domain.BiddingInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		MethodCode:  req.MethodCode,
		Attachments: req.Attachments,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.bidding(b))
}

// ListBiddingsHandler возвращает объявления с фильтром по статусу и периоду создания
func (h *Handler) ListBiddingsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	f := models.BiddingFilter{Limit: params.Limit, Offset: params.Offset}

	if s := r.URL.Query().Get("status"); s != "" {
		st, err := domain.ParseBiddingStatus(s)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.Status = st
	}
	var err error
	if f.From, err = parseTimeParam(r, "from"); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.To, err = parseTimeParam(r, "to"); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.Service.ListBiddings(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.biddings(list))
}

func (h *Handler) GetBiddingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.Service.GetBidding(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.bidding(b))
}

func (h *Handler) GetBiddingByNumberHandler(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.GetBiddingByNumber(r.Context(), chi.URLParam(r, "bidNumber"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.bidding(b))
}

// EditBiddingHandler меняет только переданные поля
func (h *Handler) EditBiddingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req editBiddingRequest
	if !h.decode(w, r, &req) {
		return
	}

	b, err := h.Service.UpdateBidding(r.Context(), actor, id, domain.BiddingPatch{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		MethodCode:  req.MethodCode,
		Attachments: req.Attachments,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.bidding(b))
}

func (h *Handler) DeleteBiddingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteBidding(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeBiddingStatusHandler переводит объявление в статус из query параметра status
func (h *Handler) ChangeBiddingStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "biddingId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		http.Error(w, "Missing status", http.StatusBadRequest)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	to, err := domain.ParseBiddingStatus(status)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	b, err := h.Service.ChangeBiddingStatus(r.Context(), actor, id, to, r.URL.Query().Get("reason"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.bidding(b))
}

func (h *Handler) historyHandler(entity models.EntityType, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, param)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		list, err := h.Service.ListStatusHistory(r.Context(), entity, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// BiddingHistoryHandler отдает журнал переходов статусов объявления
func (h *Handler) BiddingHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h.historyHandler(models.EntityBidding, "biddingId")(w, r)
}
