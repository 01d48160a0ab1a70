package handlers

import (
	"net/http"
	"strings"
	"time"

	"bidding/internal/domain"
	"bidding/models"
)

type deliveryDateRequest struct {
	ExpectedDeliveryDate time.Time `json:"expectedDeliveryDate" validate:"required"`
}

// CreateOrderHandler создает заказ по победившему участию
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
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

	o, err := h.Service.CreateOrder(r.Context(), actor, biddingID, req.ParticipationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.order(o))
}

func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	f := models.OrderFilter{Limit: params.Limit, Offset: params.Offset}

	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = models.OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
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

	list, err := h.Service.ListOrders(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orders(list))
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.order(o))
}

// ApproveOrderHandler утверждает заказ; повторное утверждение дает 409
func (h *Handler) ApproveOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	o, err := h.Service.ApproveOrder(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.order(o))
}

func (h *Handler) UpdateDeliveryDateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req deliveryDateRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.Service.UpdateDeliveryDate(r.Context(), actor, id, req.ExpectedDeliveryDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.order(o))
}

func (h *Handler) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	o, err := h.Service.CancelOrder(r.Context(), actor, id, r.URL.Query().Get("reason"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.order(o))
}
