package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bidding/internal/domain"
	"bidding/models"
)

// memStore хранит данные в памяти с теми же ограничениями уникальности, что и схема.
// Транзакции выполняются по одной; при ошибке состояние откатывается к снимку.
// Чтения ...ForUpdate записываются как блокировки строк, и запись договора, заказа,
// оценки или участия без нужной блокировки завершается ошибкой.
type memStore struct {
	memRepo
	mu sync.Mutex

	// блокировки последней транзакции в порядке взятия
	lastLocks []string
}

type memData struct {
	nextID         int64
	bidSeq         int64
	members        map[int64]models.Member
	biddings       map[int64]models.Bidding
	history        []models.StatusHistory
	invitations    map[int64]models.SupplierInvitation
	participations map[int64]models.Participation
	evaluations    map[int64]models.Evaluation
	contracts      map[int64]models.Contract
	orders         map[int64]models.Order
}

func newMemStore(members ...models.Member) *memStore {
	d := &memData{
		members:        map[int64]models.Member{},
		biddings:       map[int64]models.Bidding{},
		invitations:    map[int64]models.SupplierInvitation{},
		participations: map[int64]models.Participation{},
		evaluations:    map[int64]models.Evaluation{},
		contracts:      map[int64]models.Contract{},
		orders:         map[int64]models.Order{},
	}
	for _, m := range members {
		d.members[m.ID] = m
	}
	s := &memStore{}
	s.memRepo.d = d
	return s
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		nextID:         d.nextID,
		bidSeq:         d.bidSeq,
		members:        cloneMap(d.members),
		biddings:       cloneMap(d.biddings),
		history:        append([]models.StatusHistory(nil), d.history...),
		invitations:    cloneMap(d.invitations),
		participations: cloneMap(d.participations),
		evaluations:    cloneMap(d.evaluations),
		contracts:      cloneMap(d.contracts),
		orders:         cloneMap(d.orders),
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(r Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.d.clone()
	s.locks = nil
	defer func() {
		s.lastLocks, s.locks = s.locks, nil
	}()
	if err := fn(&s.memRepo); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// locked возвращает блокировки, взятые последней транзакцией.
func (s *memStore) locked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lastLocks...)
}

type memRepo struct {
	d     *memData
	locks []string
}

func lockKey(table string, id int64) string {
	return fmt.Sprintf("%s:%d", table, id)
}

func (r *memRepo) lock(table string, id int64) {
	key := lockKey(table, id)
	for _, l := range r.locks {
		if l == key {
			return
		}
	}
	r.locks = append(r.locks, key)
}

func (r *memRepo) requireLock(table string, id int64) error {
	key := lockKey(table, id)
	for _, l := range r.locks {
		if l == key {
			return nil
		}
	}
	return fmt.Errorf("write without row lock on %s", key)
}

func (r *memRepo) id() int64 {
	r.d.nextID++
	return r.d.nextID
}

func (r *memRepo) GetMember(_ context.Context, id int64) (*models.Member, error) {
	m, ok := r.d.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound.Withf("%d", id)
	}
	return &m, nil
}

func (r *memRepo) GetMemberByUsername(_ context.Context, username string) (*models.Member, error) {
	for _, m := range r.d.members {
		if m.Username == username {
			return &m, nil
		}
	}
	return nil, domain.ErrMemberNotFound.Withf("%s", username)
}

func (r *memRepo) ListReferenceCodes(context.Context) ([]models.ReferenceCode, error) {
	return nil, nil
}

func (r *memRepo) NextBidSequence(context.Context) (int64, error) {
	r.d.bidSeq++
	return r.d.bidSeq, nil
}

func (r *memRepo) CreateBidding(_ context.Context, b *models.Bidding) error {
	for _, x := range r.d.biddings {
		if x.BidNumber == b.BidNumber {
			return domain.ErrDuplicateNumber
		}
	}
	b.ID = r.id()
	r.d.biddings[b.ID] = *b
	return nil
}

func (r *memRepo) GetBidding(_ context.Context, id int64) (*models.Bidding, error) {
	b, ok := r.d.biddings[id]
	if !ok {
		return nil, domain.ErrBiddingNotFound.Withf("%d", id)
	}
	return &b, nil
}

func (r *memRepo) GetBiddingForUpdate(ctx context.Context, id int64) (*models.Bidding, error) {
	b, err := r.GetBidding(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lock("bidding", id)
	return b, nil
}

func (r *memRepo) GetBiddingByNumber(_ context.Context, number string) (*models.Bidding, error) {
	for _, b := range r.d.biddings {
		if b.BidNumber == number {
			return &b, nil
		}
	}
	return nil, domain.ErrBiddingNotFound.Withf("%s", number)
}

func (r *memRepo) UpdateBidding(_ context.Context, b *models.Bidding) error {
	if _, ok := r.d.biddings[b.ID]; !ok {
		return domain.ErrBiddingNotFound
	}
	r.d.biddings[b.ID] = *b
	return nil
}

func (r *memRepo) DeleteBidding(_ context.Context, id int64) error {
	if _, ok := r.d.biddings[id]; !ok {
		return domain.ErrBiddingNotFound
	}
	delete(r.d.biddings, id)
	kept := r.d.history[:0]
	for _, h := range r.d.history {
		if h.EntityType != models.EntityBidding || h.EntityID != id {
			kept = append(kept, h)
		}
	}
	r.d.history = kept
	return nil
}

func (r *memRepo) CountBiddingChildren(_ context.Context, id int64) (int, error) {
	n := 0
	for _, x := range r.d.invitations {
		if x.BiddingID == id {
			n++
		}
	}
	for _, x := range r.d.participations {
		if x.BiddingID == id {
			n++
		}
	}
	for _, x := range r.d.evaluations {
		if x.BiddingID == id {
			n++
		}
	}
	for _, x := range r.d.contracts {
		if x.BiddingID == id {
			n++
		}
	}
	for _, x := range r.d.orders {
		if x.BiddingID == id {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListBiddings(_ context.Context, f models.BiddingFilter) ([]models.Bidding, error) {
	out := []models.Bidding{}
	for _, b := range r.d.biddings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.From != nil && b.StartDate.Before(*f.From) {
			continue
		}
		if f.To != nil && b.EndDate.After(*f.To) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, f.Limit, f.Offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r *memRepo) AddStatusHistory(_ context.Context, h *models.StatusHistory) error {
	h.ID = r.id()
	r.d.history = append(r.d.history, *h)
	return nil
}

func (r *memRepo) ListStatusHistory(_ context.Context, entity models.EntityType, id int64) ([]models.StatusHistory, error) {
	out := []models.StatusHistory{}
	for _, h := range r.d.history {
		if h.EntityType == entity && h.EntityID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memRepo) CreateInvitation(_ context.Context, inv *models.SupplierInvitation) error {
	for _, x := range r.d.invitations {
		if x.BiddingID == inv.BiddingID && x.SupplierID == inv.SupplierID {
			return domain.ErrAlreadyInvited
		}
	}
	inv.ID = r.id()
	r.d.invitations[inv.ID] = *inv
	return nil
}

func (r *memRepo) GetInvitation(_ context.Context, id int64) (*models.SupplierInvitation, error) {
	inv, ok := r.d.invitations[id]
	if !ok {
		return nil, domain.ErrInvitationNotFound.Withf("%d", id)
	}
	return &inv, nil
}

func (r *memRepo) FindInvitation(_ context.Context, biddingID, supplierID int64) (*models.SupplierInvitation, error) {
	for _, inv := range r.d.invitations {
		if inv.BiddingID == biddingID && inv.SupplierID == supplierID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memRepo) UpdateInvitation(_ context.Context, inv *models.SupplierInvitation) error {
	if _, ok := r.d.invitations[inv.ID]; !ok {
		return domain.ErrInvitationNotFound
	}
	r.d.invitations[inv.ID] = *inv
	return nil
}

func (r *memRepo) MarkInvitationNotified(_ context.Context, inv *models.SupplierInvitation) error {
	cur, ok := r.d.invitations[inv.ID]
	if !ok {
		return domain.ErrInvitationNotFound
	}
	cur.NotificationSent = inv.NotificationSent
	cur.NotificationSentAt = inv.NotificationSentAt
	r.d.invitations[inv.ID] = cur
	return nil
}

func (r *memRepo) ListInvitations(_ context.Context, biddingID int64) ([]models.SupplierInvitation, error) {
	out := []models.SupplierInvitation{}
	for _, inv := range r.d.invitations {
		if inv.BiddingID == biddingID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) CreateParticipation(_ context.Context, p *models.Participation) error {
	for _, x := range r.d.participations {
		if x.BiddingID == p.BiddingID && x.SupplierID == p.SupplierID {
			return domain.ErrAlreadyParticipated
		}
	}
	p.ID = r.id()
	r.d.participations[p.ID] = *p
	return nil
}

func (r *memRepo) GetParticipation(_ context.Context, id int64) (*models.Participation, error) {
	p, ok := r.d.participations[id]
	if !ok {
		return nil, domain.ErrParticipationNotFound.Withf("%d", id)
	}
	return &p, nil
}

func (r *memRepo) UpdateParticipation(_ context.Context, p *models.Participation) error {
	if _, ok := r.d.participations[p.ID]; !ok {
		return domain.ErrParticipationNotFound
	}
	if err := r.requireLock("bidding", p.BiddingID); err != nil {
		return err
	}
	r.d.participations[p.ID] = *p
	return nil
}

func (r *memRepo) ListParticipations(_ context.Context, biddingID int64) ([]models.Participation, error) {
	out := []models.Participation{}
	for _, p := range r.d.participations {
		if p.BiddingID == biddingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) ListSupplierParticipations(_ context.Context, supplierID int64, limit, offset int) ([]models.Participation, error) {
	out := []models.Participation{}
	for _, p := range r.d.participations {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, limit, offset), nil
}

func (r *memRepo) CreateEvaluation(_ context.Context, e *models.Evaluation) error {
	for _, x := range r.d.evaluations {
		if x.ParticipationID == e.ParticipationID && x.EvaluatorID == e.EvaluatorID {
			return domain.ErrAlreadyEvaluated
		}
	}
	e.ID = r.id()
	r.d.evaluations[e.ID] = *e
	return nil
}

func (r *memRepo) GetEvaluation(_ context.Context, id int64) (*models.Evaluation, error) {
	e, ok := r.d.evaluations[id]
	if !ok {
		return nil, domain.ErrEvaluationNotFound.Withf("%d", id)
	}
	return &e, nil
}

func (r *memRepo) UpdateEvaluation(_ context.Context, e *models.Evaluation) error {
	if _, ok := r.d.evaluations[e.ID]; !ok {
		return domain.ErrEvaluationNotFound
	}
	if err := r.requireLock("bidding", e.BiddingID); err != nil {
		return err
	}
	if e.Selected {
		for _, x := range r.d.evaluations {
			if x.Selected && x.BiddingID == e.BiddingID && x.ID != e.ID {
				return domain.ErrAlreadySelected
			}
		}
	}
	r.d.evaluations[e.ID] = *e
	return nil
}

func (r *memRepo) ListEvaluations(_ context.Context, biddingID int64) ([]models.Evaluation, error) {
	out := []models.Evaluation{}
	for _, e := range r.d.evaluations {
		if e.BiddingID == biddingID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) ListWinners(_ context.Context, limit int) ([]models.Evaluation, error) {
	out := []models.Evaluation{}
	for _, e := range r.d.evaluations {
		if e.Selected {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, limit, 0), nil
}

func (r *memRepo) ListTopScored(ctx context.Context, biddingID int64, limit int) ([]models.Evaluation, error) {
	out, _ := r.ListEvaluations(ctx, biddingID)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].WeightedScore.Cmp(out[j].WeightedScore); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})
	return window(out, limit, 0), nil
}

func (r *memRepo) CreateContract(_ context.Context, c *models.Contract) error {
	for _, x := range r.d.contracts {
		if x.TransactionNumber == c.TransactionNumber {
			return domain.ErrDuplicateNumber
		}
		if x.ParticipationID == c.ParticipationID && x.Status != models.ContractCanceled {
			return domain.ErrContractExists
		}
	}
	c.ID = r.id()
	r.d.contracts[c.ID] = *c
	return nil
}

func (r *memRepo) GetContract(_ context.Context, id int64) (*models.Contract, error) {
	c, ok := r.d.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound.Withf("%d", id)
	}
	return &c, nil
}

func (r *memRepo) GetContractForUpdate(ctx context.Context, id int64) (*models.Contract, error) {
	c, err := r.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lock("contract", id)
	return c, nil
}

func (r *memRepo) FindActiveContract(_ context.Context, participationID int64) (*models.Contract, error) {
	var found *models.Contract
	for _, c := range r.d.contracts {
		if c.ParticipationID == participationID && c.Status != models.ContractCanceled {
			if found == nil || c.ID > found.ID {
				c := c
				found = &c
			}
		}
	}
	return found, nil
}

func (r *memRepo) UpdateContract(_ context.Context, c *models.Contract) error {
	if _, ok := r.d.contracts[c.ID]; !ok {
		return domain.ErrContractNotFound
	}
	if err := r.requireLock("contract", c.ID); err != nil {
		return err
	}
	r.d.contracts[c.ID] = *c
	return nil
}

func (r *memRepo) ListContracts(_ context.Context, f models.ContractFilter) ([]models.Contract, error) {
	out := []models.Contract{}
	for _, c := range r.d.contracts {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.SupplierID != 0 && c.SupplierID != f.SupplierID {
			continue
		}
		if f.BiddingID != 0 && c.BiddingID != f.BiddingID {
			continue
		}
		if f.ExpiresBefore != nil {
			if c.EndDate.After(*f.ExpiresBefore) {
				continue
			}
			if f.Status == "" && !c.Status.Signable() {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Limit, f.Offset), nil
}

func (r *memRepo) CreateOrder(_ context.Context, o *models.Order) error {
	for _, x := range r.d.orders {
		if x.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicateNumber
		}
		if x.ParticipationID == o.ParticipationID && !x.Canceled {
			return domain.ErrOrderExists
		}
	}
	o.ID = r.id()
	r.d.orders[o.ID] = *o
	return nil
}

func (r *memRepo) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := r.d.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound.Withf("%d", id)
	}
	return &o, nil
}

func (r *memRepo) GetOrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lock("order", id)
	return o, nil
}

func (r *memRepo) UpdateOrder(_ context.Context, o *models.Order) error {
	if _, ok := r.d.orders[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	if err := r.requireLock("order", o.ID); err != nil {
		return err
	}
	r.d.orders[o.ID] = *o
	return nil
}

func (r *memRepo) ListOrders(_ context.Context, f models.OrderFilter) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.d.orders {
		if f.Status != "" && o.Status() != f.Status {
			continue
		}
		if f.SupplierID != 0 && o.SupplierID != f.SupplierID {
			continue
		}
		if f.BiddingID != 0 && o.BiddingID != f.BiddingID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Limit, f.Offset), nil
}
