package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bidding/internal/domain"
	"bidding/internal/refcode"
	"bidding/models"
)

// BiddingService описывает операции прикладного слоя, которые вызывают обработчики.
type BiddingService interface {
	ResolveMember(ctx context.Context, username string) (*models.Member, error)
	Codes() *refcode.Table

	CreateBidding(ctx context.Context, actor *models.Member, in domain.BiddingInput) (*models.Bidding, error)
	GetBidding(ctx context.Context, id int64) (*models.Bidding, error)
	GetBiddingByNumber(ctx context.Context, number string) (*models.Bidding, error)
	ListBiddings(ctx context.Context, f models.BiddingFilter) ([]models.Bidding, error)
	UpdateBidding(ctx context.Context, actor *models.Member, id int64, patch domain.BiddingPatch) (*models.Bidding, error)
	DeleteBidding(ctx context.Context, actor *models.Member, id int64) error
	ChangeBiddingStatus(ctx context.Context, actor *models.Member, id int64, to models.BiddingStatus, reason string) (*models.Bidding, error)
	ListStatusHistory(ctx context.Context, entity models.EntityType, id int64) ([]models.StatusHistory, error)

	Invite(ctx context.Context, actor *models.Member, biddingID, supplierID int64) (*models.SupplierInvitation, error)
	RespondInvitation(ctx context.Context, actor *models.Member, invitationID int64, d domain.Decision, reason string) (*models.SupplierInvitation, error)
	ListInvitations(ctx context.Context, biddingID int64) ([]models.SupplierInvitation, error)

	SubmitParticipation(ctx context.Context, actor *models.Member, biddingID int64, unitPrice decimal.Decimal) (*models.Participation, error)
	RepriceParticipation(ctx context.Context, actor *models.Member, id int64, unitPrice decimal.Decimal) (*models.Participation, error)
	ConfirmParticipation(ctx context.Context, actor *models.Member, id int64) (*models.Participation, error)
	GetParticipation(ctx context.Context, id int64) (*models.Participation, error)
	ListParticipations(ctx context.Context, biddingID int64) ([]models.Participation, error)
	ListSupplierParticipations(ctx context.Context, actor *models.Member, limit, offset int) ([]models.Participation, error)

	CreateEvaluation(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Evaluation, error)
	UpdateScores(ctx context.Context, actor *models.Member, id int64, scores domain.Scores, comments string) (*models.Evaluation, error)
	CancelSelection(ctx context.Context, actor *models.Member, id int64) (*models.Evaluation, error)
	ListWinners(ctx context.Context, limit int) ([]models.Evaluation, error)
	ListTopScored(ctx context.Context, biddingID int64, limit int) ([]models.Evaluation, error)
	SelectAutomatically(ctx context.Context, actor *models.Member, biddingID int64) (*models.Evaluation, error)
	SelectManually(ctx context.Context, actor *models.Member, biddingID, evaluationID int64) (*models.Evaluation, error)

	DraftContract(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Contract, error)
	StartContract(ctx context.Context, actor *models.Member, id int64) (*models.Contract, error)
	SignContract(ctx context.Context, actor *models.Member, id int64, party domain.Party, signature string) (*models.Contract, error)
	UpdateContract(ctx context.Context, actor *models.Member, id int64, patch domain.ContractPatch) (*models.Contract, error)
	CancelContract(ctx context.Context, actor *models.Member, id int64, reason string) (*models.Contract, error)
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	ListContracts(ctx context.Context, f models.ContractFilter) ([]models.Contract, error)

	CreateOrder(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Order, error)
	ApproveOrder(ctx context.Context, actor *models.Member, id int64) (*models.Order, error)
	UpdateDeliveryDate(ctx context.Context, actor *models.Member, id int64, date time.Time) (*models.Order, error)
	CancelOrder(ctx context.Context, actor *models.Member, id int64, reason string) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
}
