package handlers

import (
	"bidding/internal/refcode"
	"bidding/models"
)

// Ответы дополняют коды статусов названиями из справочника.

type biddingView struct {
	*models.Bidding
	StatusName string `json:"statusName"`
	MethodName string `json:"methodName"`
}

type contractView struct {
	*models.Contract
	StatusName string `json:"statusName"`
}

type orderView struct {
	*models.Order
	Status     models.OrderStatus `json:"status"`
	StatusName string             `json:"statusName"`
}

func (h *Handler) bidding(b *models.Bidding) biddingView {
	codes := h.Service.Codes()
	return biddingView{
		Bidding:    b,
		StatusName: codes.Name(refcode.GroupBiddingStatus, string(b.Status)),
		MethodName: codes.Name(refcode.GroupBidMethod, b.MethodCode),
	}
}

func (h *Handler) biddings(list []models.Bidding) []biddingView {
	out := make([]biddingView, 0, len(list))
	for i := range list {
		out = append(out, h.bidding(&list[i]))
	}
	return out
}

func (h *Handler) contract(c *models.Contract) contractView {
	return contractView{
		Contract:   c,
		StatusName: h.Service.Codes().Name(refcode.GroupContractStatus, string(c.Status)),
	}
}

func (h *Handler) contracts(list []models.Contract) []contractView {
	out := make([]contractView, 0, len(list))
	for i := range list {
		out = append(out, h.contract(&list[i]))
	}
	return out
}

func (h *Handler) order(o *models.Order) orderView {
	st := o.Status()
	return orderView{
		Order:      o,
		Status:     st,
		StatusName: h.Service.Codes().Name(refcode.GroupOrderStatus, string(st)),
	}
}

func (h *Handler) orders(list []models.Order) []orderView {
	out := make([]orderView, 0, len(list))
	for i := range list {
		out = append(out, h.order(&list[i]))
	}
	return out
}
