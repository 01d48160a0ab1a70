package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Price содержит ценовые поля, общие для всех записей с ценой.
// SupplyPrice, Tax и TotalPrice всегда получаются из UnitPrice через pricing.
type Price struct {
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	SupplyPrice decimal.Decimal `db:"supply_price" json:"supplyPrice"`
	Tax         decimal.Decimal `db:"tax" json:"tax"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"totalPrice"`
}

// Сущность объявления о закупке
type Bidding struct {
	ID          int64          `db:"id" json:"id"`
	BidNumber   string         `db:"bid_number" json:"bidNumber"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	StartDate   time.Time      `db:"start_date" json:"startDate"`
	EndDate     time.Time      `db:"end_date" json:"endDate"`
	Quantity    int            `db:"quantity" json:"quantity"`
	Status      BiddingStatus  `db:"status" json:"status"`
	MethodCode  string         `db:"method_code" json:"methodCode"`
	Attachments pq.StringArray `db:"attachments" json:"attachments"`
	CreatedBy   int64          `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"-"`
	Price
}

// Приглашение поставщика к закупке
type SupplierInvitation struct {
	ID                 int64      `db:"id" json:"id"`
	BiddingID          int64      `db:"bidding_id" json:"biddingId"`
	SupplierID         int64      `db:"supplier_id" json:"supplierId"`
	NotificationSent   bool       `db:"notification_sent" json:"notificationSent"`
	NotificationSentAt *time.Time `db:"notification_sent_at" json:"notificationSentAt,omitempty"`
	Participating      bool       `db:"participating" json:"participating"`
	ParticipatingAt    *time.Time `db:"participating_at" json:"participatingAt,omitempty"`
	Rejected           bool       `db:"rejected" json:"rejected"`
	RejectedAt         *time.Time `db:"rejected_at" json:"rejectedAt,omitempty"`
	RejectReason       string     `db:"reject_reason" json:"rejectReason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
}

// Участие поставщика: поданное ценовое предложение
type Participation struct {
	ID           int64      `db:"id" json:"id"`
	BiddingID    int64      `db:"bidding_id" json:"biddingId"`
	SupplierID   int64      `db:"supplier_id" json:"supplierId"`
	CompanyName  string     `db:"company_name" json:"companyName"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submittedAt"`
	Confirmed    bool       `db:"confirmed" json:"confirmed"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`
	Evaluated    bool       `db:"evaluated" json:"evaluated"`
	OrderCreated bool       `db:"order_created" json:"orderCreated"`
	Selected     bool       `db:"selected" json:"selected"`
	SelectedAt   *time.Time `db:"selected_at" json:"selectedAt,omitempty"`
	Price
}

// Оценка участия одним экспертом
type Evaluation struct {
	ID               int64           `db:"id" json:"id"`
	BiddingID        int64           `db:"bidding_id" json:"biddingId"`
	ParticipationID  int64           `db:"participation_id" json:"participationId"`
	EvaluatorID      int64           `db:"evaluator_id" json:"evaluatorId"`
	PriceScore       int             `db:"price_score" json:"priceScore"`
	QualityScore     int             `db:"quality_score" json:"qualityScore"`
	DeliveryScore    int             `db:"delivery_score" json:"deliveryScore"`
	ReliabilityScore int             `db:"reliability_score" json:"reliabilityScore"`
	TotalScore       decimal.Decimal `db:"total_score" json:"totalScore"`
	WeightedScore    decimal.Decimal `db:"weighted_score" json:"weightedScore"`
	Comments         string          `db:"comments" json:"comments"`
	Selected         bool            `db:"selected" json:"selected"`
	SelectedAt       *time.Time      `db:"selected_at" json:"selectedAt,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"-"`
}

// Договор, составленный по победившему участию
type Contract struct {
	ID                int64          `db:"id" json:"id"`
	BiddingID         int64          `db:"bidding_id" json:"biddingId"`
	ParticipationID   int64          `db:"participation_id" json:"participationId"`
	SupplierID        int64          `db:"supplier_id" json:"supplierId"`
	TransactionNumber string         `db:"transaction_number" json:"transactionNumber"`
	StartDate         time.Time      `db:"start_date" json:"startDate"`
	EndDate           time.Time      `db:"end_date" json:"endDate"`
	DeliveryDate      time.Time      `db:"delivery_date" json:"deliveryDate"`
	Quantity          int            `db:"quantity" json:"quantity"`
	BuyerSignature    string         `db:"buyer_signature" json:"buyerSignature,omitempty"`
	BuyerSignedAt     *time.Time     `db:"buyer_signed_at" json:"buyerSignedAt,omitempty"`
	BuyerSignedBy     *int64         `db:"buyer_signed_by" json:"buyerSignedBy,omitempty"`
	SupplierSignature string         `db:"supplier_signature" json:"supplierSignature,omitempty"`
	SupplierSignedAt  *time.Time     `db:"supplier_signed_at" json:"supplierSignedAt,omitempty"`
	SupplierSignedBy  *int64         `db:"supplier_signed_by" json:"supplierSignedBy,omitempty"`
	Status            ContractStatus `db:"status" json:"status"`
	CancelReason      string         `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedBy         int64          `db:"created_by" json:"createdBy"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"-"`
	Price
}

// Заказ на поставку по победившему участию
type Order struct {
	ID                   int64      `db:"id" json:"id"`
	BiddingID            int64      `db:"bidding_id" json:"biddingId"`
	ParticipationID      int64      `db:"participation_id" json:"participationId"`
	SupplierID           int64      `db:"supplier_id" json:"supplierId"`
	OrderNumber          string     `db:"order_number" json:"orderNumber"`
	Quantity             int        `db:"quantity" json:"quantity"`
	ExpectedDeliveryDate time.Time  `db:"expected_delivery_date" json:"expectedDeliveryDate"`
	ApprovedAt           *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	ApprovedBy           *int64     `db:"approved_by" json:"approvedBy,omitempty"`
	Canceled             bool       `db:"canceled" json:"canceled"`
	CanceledAt           *time.Time `db:"canceled_at" json:"canceledAt,omitempty"`
	CancelReason         string     `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedBy            int64      `db:"created_by" json:"createdBy"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"-"`
	Price
}

// Status выводится из отметок об утверждении и отмене.
func (o *Order) Status() OrderStatus {
	switch {
	case o.Canceled:
		return OrderCanceled
	case o.ApprovedAt != nil:
		return OrderApproved
	default:
		return OrderPending
	}
}

// Запись журнала переходов статусов
type StatusHistory struct {
	ID         int64      `db:"id" json:"id"`
	EntityType EntityType `db:"entity_type" json:"entityType"`
	EntityID   int64      `db:"entity_id" json:"entityId"`
	FromStatus string     `db:"from_status" json:"fromStatus"`
	ToStatus   string     `db:"to_status" json:"toStatus"`
	Reason     string     `db:"reason" json:"reason"`
	ActorID    int64      `db:"actor_id" json:"actorId"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// Участник (из справочника пользователей, только чтение)
type Member struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	Name        string    `db:"name" json:"name"`
	CompanyName string    `db:"company_name" json:"companyName"`
	Role        Role      `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Запись справочника кодов (только чтение)
type ReferenceCode struct {
	Group string `db:"code_group" json:"group"`
	Code  string `db:"code" json:"code"`
	Name  string `db:"name" json:"name"`
}
