package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"bidding/internal/domain"
	"bidding/internal/notify"
	"bidding/models"
)

// draftAttempts ограничивает перегенерацию номера договора при совпадении.
const draftAttempts = 4

// DraftContract составляет договор по победившему участию. Номер берётся
// из номера объявления, а при занятом номере генерируется случайный.
// Пока есть неотменённый договор по участию, новый не составляется.
func (s *Service) DraftContract(ctx context.Context, actor *models.Member, biddingID, participationID int64) (*models.Contract, error) {
	var (
		c   *models.Contract
		err error
	)
	for attempt := 0; attempt < draftAttempts; attempt++ {
		c, err = s.draftContract(ctx, actor, biddingID, participationID, attempt > 0)
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			break
		}
		s.log.WithField("bidding", biddingID).Warn("contract number taken, generating another")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) draftContract(ctx context.Context, actor *models.Member, biddingID, participationID int64, random bool) (*models.Contract, error) {
	var c *models.Contract
	err := s.tx(ctx, func(r Repository, out *pending) error {
		b, err := r.GetBiddingForUpdate(ctx, biddingID)
		if err != nil {
			return err
		}
		p, err := r.GetParticipation(ctx, participationID)
		if err != nil {
			return err
		}
		active, err := r.FindActiveContract(ctx, participationID)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.ErrContractExists.Withf("%s", active.TransactionNumber)
		}
		now := s.now()
		bidNumber := b.BidNumber
		if random {
			bidNumber = ""
		}
		suffix := s.suffix()
		if len(suffix) > 4 {
			suffix = suffix[:4]
		}
		number := domain.TransactionNumber(bidNumber, now, suffix)
		if c, err = domain.DraftContract(b, p, number, actor.ID, now); err != nil {
			return err
		}
		if err := r.CreateContract(ctx, c); err != nil {
			return err
		}
		if err := s.history(ctx, r, c.ID, &models.StatusHistory{
			EntityType: models.EntityContract,
			ToStatus:   string(c.Status),
			Reason:     "drafted",
			ActorID:    actor.ID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		out.add(recipients(c.SupplierID, b.CreatedBy), notify.CategoryContract, c.ID,
			fmt.Sprintf("Contract %s drafted", c.TransactionNumber),
			fmt.Sprintf("Contract for %q is ready for signing", b.Title))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) StartContract(ctx context.Context, actor *models.Member, id int64) (*models.Contract, error) {
	return s.changeContract(ctx, id, func(r Repository, c *models.Contract, out *pending) error {
		h, err := domain.StartContract(c, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateContract(ctx, c); err != nil {
			return err
		}
		return s.history(ctx, r, c.ID, h)
	})
}

// SignContract ставит подпись стороны и закрывает договор, если подписи обеих сторон есть.
func (s *Service) SignContract(ctx context.Context, actor *models.Member, id int64, party domain.Party, signature string) (*models.Contract, error) {
	return s.changeContract(ctx, id, func(r Repository, c *models.Contract, out *pending) error {
		if err := domain.SignContract(c, party, signature, actor.ID, s.now()); err != nil {
			return err
		}
		counterpart := c.SupplierID
		if party == domain.PartySupplier {
			counterpart = c.CreatedBy
		}
		out.add([]int64{counterpart}, notify.CategoryContract, c.ID,
			fmt.Sprintf("Contract %s signed", c.TransactionNumber),
			fmt.Sprintf("%s signed the contract as %s", actor.Name, party))
		return s.saveAndComplete(ctx, r, c, actor, out)
	})
}

// UpdateContract меняет даты и цену; после пересчёта снова проверяется завершение.
func (s *Service) UpdateContract(ctx context.Context, actor *models.Member, id int64, patch domain.ContractPatch) (*models.Contract, error) {
	return s.changeContract(ctx, id, func(r Repository, c *models.Contract, out *pending) error {
		if err := domain.UpdateContract(c, patch, s.now()); err != nil {
			return err
		}
		return s.saveAndComplete(ctx, r, c, actor, out)
	})
}

func (s *Service) saveAndComplete(ctx context.Context, r Repository, c *models.Contract, actor *models.Member, out *pending) error {
	h := domain.CompleteIfSigned(c, actor.ID, s.now())
	if err := r.UpdateContract(ctx, c); err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	out.add(recipients(c.SupplierID, c.CreatedBy), notify.CategoryContract, c.ID,
		fmt.Sprintf("Contract %s concluded", c.TransactionNumber),
		"Both parties signed the contract")
	return s.history(ctx, r, c.ID, h)
}

func (s *Service) CancelContract(ctx context.Context, actor *models.Member, id int64, reason string) (*models.Contract, error) {
	return s.changeContract(ctx, id, func(r Repository, c *models.Contract, out *pending) error {
		h, err := domain.CancelContract(c, reason, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := r.UpdateContract(ctx, c); err != nil {
			return err
		}
		out.add(others(actor.ID, c.SupplierID, c.CreatedBy), notify.CategoryContract, c.ID,
			fmt.Sprintf("Contract %s canceled", c.TransactionNumber), reason)
		return s.history(ctx, r, c.ID, h)
	})
}

// changeContract меняет договор под блокировкой его строки.
func (s *Service) changeContract(ctx context.Context, id int64, fn func(r Repository, c *models.Contract, out *pending) error) (*models.Contract, error) {
	var c *models.Contract
	err := s.tx(ctx, func(r Repository, out *pending) error {
		var err error
		if c, err = r.GetContractForUpdate(ctx, id); err != nil {
			return err
		}
		return fn(r, c, out)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	return s.store.GetContract(ctx, id)
}

func (s *Service) ListContracts(ctx context.Context, f models.ContractFilter) ([]models.Contract, error) {
	return s.store.ListContracts(ctx, f)
}
