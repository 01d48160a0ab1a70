package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bidding/internal/pricing"
	"bidding/models"
)

const (
	BidNumberPrefix      = "BID-"
	ContractNumberPrefix = "CT-"
	OrderNumberPrefix    = "PO-"
)

// Срок договора по умолчанию, в месяцах
const ContractTermMonths = 6

var bidNumberPattern = regexp.MustCompile(`^BID-\d{8}-\d+$`)

type Party string

const (
	PartyBuyer    Party = "BUYER"
	PartySupplier Party = "SUPPLIER"
)

// ContractPatch содержит изменяемые поля договора.
type ContractPatch struct {
	StartDate    *time.Time
	EndDate      *time.Time
	DeliveryDate *time.Time
	Quantity     *int
	UnitPrice    *decimal.Decimal
}

// TransactionNumber получает номер договора заменой префикса номера объявления.
// Если номер объявления не по шаблону, используется дата и случайный суффикс.
func TransactionNumber(bidNumber string, now time.Time, suffix string) string {
	if bidNumberPattern.MatchString(bidNumber) {
		return ContractNumberPrefix + strings.TrimPrefix(bidNumber, BidNumberPrefix)
	}
	return ContractNumberPrefix + now.Format("20060102") + "-" + suffix
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DraftContract составляет черновик договора по победившему участию.
func DraftContract(b *models.Bidding, p *models.Participation, txNumber string, actorID int64, now time.Time) (*models.Contract, error) {
	if p.BiddingID != b.ID {
		return nil, ErrParticipationNotFound.Withf("participation %d is not part of bidding %d", p.ID, b.ID)
	}
	if !p.Selected {
		return nil, ErrNotWinner.Withf("participation %d", p.ID)
	}
	start := startOfDay(now)
	end := start.AddDate(0, ContractTermMonths, 0)
	return &models.Contract{
		BiddingID:         b.ID,
		ParticipationID:   p.ID,
		SupplierID:        p.SupplierID,
		TransactionNumber: txNumber,
		StartDate:         start,
		EndDate:           end,
		DeliveryDate:      end,
		Quantity:          b.Quantity,
		Status:            models.ContractDraft,
		CreatedBy:         actorID,
		CreatedAt:         now,
		UpdatedAt:         now,
		Price:             p.Price,
	}, nil
}

func contractHistory(c *models.Contract, to models.ContractStatus, reason string, actorID int64, now time.Time) *models.StatusHistory {
	h := &models.StatusHistory{
		EntityType: models.EntityContract,
		EntityID:   c.ID,
		FromStatus: string(c.Status),
		ToStatus:   string(to),
		Reason:     reason,
		ActorID:    actorID,
		CreatedAt:  now,
	}
	c.Status = to
	c.UpdatedAt = now
	return h
}

// StartContract: DRAFT -> IN_PROGRESS.
func StartContract(c *models.Contract, actorID int64, now time.Time) (*models.StatusHistory, error) {
	if c.Status != models.ContractDraft {
		return nil, ErrInvalidState.Withf("contract is %s", c.Status)
	}
	return contractHistory(c, models.ContractInProgress, "started", actorID, now), nil
}

func SignContract(c *models.Contract, party Party, signature string, signerID int64, now time.Time) error {
	if !c.Status.Signable() {
		return ErrInvalidState.Withf("contract is %s", c.Status)
	}
	if strings.TrimSpace(signature) == "" {
		return Invalid("signature is required")
	}
	switch party {
	case PartyBuyer:
		if signerID != c.CreatedBy {
			return ErrForbidden.Withf("only the buyer who drafted the contract can sign")
		}
		c.BuyerSignature = signature
		c.BuyerSignedAt = &now
		c.BuyerSignedBy = &signerID
	case PartySupplier:
		if signerID != c.SupplierID {
			return ErrForbidden.Withf("only the contract supplier can sign")
		}
		c.SupplierSignature = signature
		c.SupplierSignedAt = &now
		c.SupplierSignedBy = &signerID
	default:
		return Invalid("unknown party %q", party)
	}
	c.UpdatedAt = now
	return nil
}

func FullySigned(c *models.Contract) bool {
	return c.BuyerSignature != "" && c.SupplierSignature != ""
}

// CompleteIfSigned закрывает договор, когда есть обе подписи.
// Возвращает nil, если переход не произошёл.
func CompleteIfSigned(c *models.Contract, actorID int64, now time.Time) *models.StatusHistory {
	if !FullySigned(c) || !c.Status.Signable() {
		return nil
	}
	return contractHistory(c, models.ContractClosed, "signed by both parties", actorID, now)
}

// UpdateContract меняет даты и цену; цены пересчитываются через pricing.
func UpdateContract(c *models.Contract, p ContractPatch, now time.Time) error {
	if !c.Status.Signable() {
		return ErrInvalidState.Withf("contract is %s", c.Status)
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.DeliveryDate != nil {
		c.DeliveryDate = *p.DeliveryDate
	}
	if !c.EndDate.After(c.StartDate) {
		return Invalid("endDate must be after startDate")
	}
	quantity, unit := c.Quantity, c.UnitPrice
	if p.Quantity != nil {
		quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		unit = *p.UnitPrice
	}
	if err := pricing.Reprice(&c.Price, unit, quantity); err != nil {
		return Invalid("%v", err)
	}
	c.Quantity = quantity
	c.UpdatedAt = now
	return nil
}

func CancelContract(c *models.Contract, reason string, actorID int64, now time.Time) (*models.StatusHistory, error) {
	switch c.Status {
	case models.ContractClosed, models.ContractCanceled:
		return nil, ErrInvalidState.Withf("contract is %s", c.Status)
	}
	c.CancelReason = reason
	return contractHistory(c, models.ContractCanceled, reason, actorID, now), nil
}
