package models

type (
	BiddingStatus  string // Статус объявления о закупке
	ContractStatus string // Статус договора
	OrderStatus    string // Статус заказа (производный)
	EntityType     string // Тип сущности в журнале статусов
	Role           string // Роль участника
)

const (
	BiddingPending  BiddingStatus = "PENDING"
	BiddingOngoing  BiddingStatus = "ONGOING"
	BiddingClosed   BiddingStatus = "CLOSED"
	BiddingCanceled BiddingStatus = "CANCELED"

	ContractDraft      ContractStatus = "DRAFT"
	ContractInProgress ContractStatus = "IN_PROGRESS"
	ContractClosed     ContractStatus = "CLOSED"
	ContractCanceled   ContractStatus = "CANCELED"

	OrderPending  OrderStatus = "PENDING"
	OrderApproved OrderStatus = "APPROVED"
	OrderCanceled OrderStatus = "CANCELED"

	EntityBidding  EntityType = "BIDDING"
	EntityContract EntityType = "CONTRACT"
	EntityOrder    EntityType = "ORDER"

	RoleBuyer     Role = "BUYER"
	RoleSupplier  Role = "SUPPLIER"
	RoleEvaluator Role = "EVALUATOR"
)

func (s BiddingStatus) Valid() bool {
	switch s {
	case BiddingPending, BiddingOngoing, BiddingClosed, BiddingCanceled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что из статуса больше нет переходов.
func (s BiddingStatus) Terminal() bool {
	return s == BiddingClosed || s == BiddingCanceled
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractInProgress, ContractClosed, ContractCanceled:
		return true
	default:
		return false
	}
}

// Signable: подписывать и завершать можно только черновик или договор в работе.
func (s ContractStatus) Signable() bool {
	return s == ContractDraft || s == ContractInProgress
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderCanceled:
		return true
	default:
		return false
	}
}
