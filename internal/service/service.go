// Package service связывает правила из domain с хранилищем и уведомлениями.
// Каждая операция выполняется в одной транзакции, уведомления уходят после фиксации.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bidding/db"
	"bidding/internal/notify"
	"bidding/internal/refcode"
	"bidding/models"
)

// Repository перечисляет операции хранилища, доступные внутри транзакции.
type Repository interface {
	GetMember(ctx context.Context, id int64) (*models.Member, error)
	GetMemberByUsername(ctx context.Context, username string) (*models.Member, error)
	ListReferenceCodes(ctx context.Context) ([]models.ReferenceCode, error)

	NextBidSequence(ctx context.Context) (int64, error)
	CreateBidding(ctx context.Context, b *models.Bidding) error
	GetBidding(ctx context.Context, id int64) (*models.Bidding, error)
	GetBiddingForUpdate(ctx context.Context, id int64) (*models.Bidding, error)
	GetBiddingByNumber(ctx context.Context, number string) (*models.Bidding, error)
	UpdateBidding(ctx context.Context, b *models.Bidding) error
	DeleteBidding(ctx context.Context, id int64) error
	CountBiddingChildren(ctx context.Context, id int64) (int, error)
	ListBiddings(ctx context.Context, f models.BiddingFilter) ([]models.Bidding, error)

	AddStatusHistory(ctx context.Context, h *models.StatusHistory) error
	ListStatusHistory(ctx context.Context, entity models.EntityType, id int64) ([]models.StatusHistory, error)

	CreateInvitation(ctx context.Context, inv *models.SupplierInvitation) error
	GetInvitation(ctx context.Context, id int64) (*models.SupplierInvitation, error)
	FindInvitation(ctx context.Context, biddingID, supplierID int64) (*models.SupplierInvitation, error)
	UpdateInvitation(ctx context.Context, inv *models.SupplierInvitation) error
	MarkInvitationNotified(ctx context.Context, inv *models.SupplierInvitation) error
	ListInvitations(ctx context.Context, biddingID int64) ([]models.SupplierInvitation, error)

	CreateParticipation(ctx context.Context, p *models.Participation) error
	GetParticipation(ctx context.Context, id int64) (*models.Participation, error)
	UpdateParticipation(ctx context.Context, p *models.Participation) error
	ListParticipations(ctx context.Context, biddingID int64) ([]models.Participation, error)
	ListSupplierParticipations(ctx context.Context, supplierID int64, limit, offset int) ([]models.Participation, error)

	CreateEvaluation(ctx context.Context, e *models.Evaluation) error
	GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error)
	UpdateEvaluation(ctx context.Context, e *models.Evaluation) error
	ListEvaluations(ctx context.Context, biddingID int64) ([]models.Evaluation, error)
	ListWinners(ctx context.Context, limit int) ([]models.Evaluation, error)
	ListTopScored(ctx context.Context, biddingID int64, limit int) ([]models.Evaluation, error)

	CreateContract(ctx context.Context, c *models.Contract) error
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	GetContractForUpdate(ctx context.Context, id int64) (*models.Contract, error)
	FindActiveContract(ctx context.Context, participationID int64) (*models.Contract, error)
	UpdateContract(ctx context.Context, c *models.Contract) error
	ListContracts(ctx context.Context, f models.ContractFilter) ([]models.Contract, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
}

// Store добавляет к Repository транзакции.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(r Repository) error) error
}

type sqlStore struct {
	*db.Storage
}

// NewSQLStore адаптирует db.Storage к Store.
func NewSQLStore(s *db.Storage) Store {
	return sqlStore{Storage: s}
}

func (s sqlStore) InTx(ctx context.Context, fn func(r Repository) error) error {
	return s.Storage.InTx(ctx, func(tx *db.Storage) error {
		return fn(tx)
	})
}

type Service struct {
	store    Store
	notifier notify.Notifier
	codes    *refcode.Table
	log      logrus.FieldLogger

	now    func() time.Time
	suffix func() string
}

type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSuffix подменяет генератор случайных суффиксов номеров.
func WithSuffix(suffix func() string) Option {
	return func(s *Service) { s.suffix = suffix }
}

func New(store Store, notifier notify.Notifier, codes *refcode.Table, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		codes:    codes,
		log:      log,
		now:      time.Now,
		suffix:   randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Codes возвращает таблицу отображаемых названий.
func (s *Service) Codes() *refcode.Table {
	return s.codes
}

// ResolveMember находит действующего пользователя по имени.
func (s *Service) ResolveMember(ctx context.Context, username string) (*models.Member, error) {
	return s.store.GetMemberByUsername(ctx, username)
}

// tx выполняет fn в транзакции и после фиксации отправляет собранные уведомления.
func (s *Service) tx(ctx context.Context, fn func(r Repository, out *pending) error) error {
	out := &pending{}
	if err := s.store.InTx(ctx, func(r Repository) error {
		out.msgs = out.msgs[:0]
		return fn(r, out)
	}); err != nil {
		return err
	}
	if len(out.msgs) > 0 {
		s.notifier.Notify(ctx, out.msgs...)
	}
	return nil
}

// pending копит уведомления до фиксации транзакции.
type pending struct {
	msgs []notify.Message
}

func (o *pending) add(recipients []int64, category notify.Category, related int64, title, content string) {
	for _, id := range recipients {
		o.msgs = append(o.msgs, notify.Message{
			RecipientID: id,
			Title:       title,
			Content:     content,
			RelatedID:   related,
			Category:    category,
		})
	}
}

// recipients убирает повторы, сохраняя порядок.
func recipients(ids ...int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// others делает то же и убирает действующего пользователя.
func others(actorID int64, ids ...int64) []int64 {
	var out []int64
	for _, id := range recipients(ids...) {
		if id != actorID {
			out = append(out, id)
		}
	}
	return out
}

// lockEvaluation блокирует объявление оценки и перечитывает оценку под блокировкой.
// Оценки и участия меняются только под блокировкой своего объявления, как и выбор победителя.
func lockEvaluation(ctx context.Context, r Repository, id int64) (*models.Evaluation, error) {
	e, err := r.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.GetBiddingForUpdate(ctx, e.BiddingID); err != nil {
		return nil, err
	}
	return r.GetEvaluation(ctx, id)
}

// lockParticipation делает то же для участия и возвращает заблокированное объявление.
func lockParticipation(ctx context.Context, r Repository, id int64) (*models.Participation, *models.Bidding, error) {
	p, err := r.GetParticipation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	b, err := r.GetBiddingForUpdate(ctx, p.BiddingID)
	if err != nil {
		return nil, nil, err
	}
	if p, err = r.GetParticipation(ctx, id); err != nil {
		return nil, nil, err
	}
	return p, b, nil
}

func (s *Service) history(ctx context.Context, r Repository, entityID int64, h *models.StatusHistory) error {
	if h == nil {
		return nil
	}
	h.EntityID = entityID
	return r.AddStatusHistory(ctx, h)
}
