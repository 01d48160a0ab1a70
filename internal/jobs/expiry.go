// Package jobs содержит периодические задачи сервиса.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"bidding/internal/notify"
	"bidding/models"
)

// ContractLister отдает действующие договоры.
type ContractLister interface {
	ListContracts(ctx context.Context, f models.ContractFilter) ([]models.Contract, error)
}

// ExpiryNotifier предупреждает стороны о договорах, срок которых скоро истекает.
type ExpiryNotifier struct {
	contracts ContractLister
	notifier  notify.Notifier
	window    time.Duration
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewExpiryNotifier(contracts ContractLister, notifier notify.Notifier, windowDays int, log logrus.FieldLogger) *ExpiryNotifier {
	return &ExpiryNotifier{
		contracts: contracts,
		notifier:  notifier,
		window:    time.Duration(windowDays) * 24 * time.Hour,
		log:       log,
		now:       time.Now,
	}
}

// Run отправляет предупреждения и возвращает число найденных договоров.
func (j *ExpiryNotifier) Run(ctx context.Context) (int, error) {
	deadline := j.now().Add(j.window)
	contracts, err := j.contracts.ListContracts(ctx, models.ContractFilter{ExpiresBefore: &deadline})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list expiring contracts")
	}
	for _, c := range contracts {
		msg := notify.Message{
			Title:     fmt.Sprintf("Contract %s expires soon", c.TransactionNumber),
			Content:   fmt.Sprintf("Contract %s ends on %s", c.TransactionNumber, c.EndDate.Format("2006-01-02")),
			RelatedID: c.ID,
			Category:  notify.CategoryContract,
		}
		supplier, buyer := msg, msg
		supplier.RecipientID = c.SupplierID
		buyer.RecipientID = c.CreatedBy
		j.notifier.Notify(ctx, supplier, buyer)
	}
	return len(contracts), nil
}

// Schedule регистрирует задачу в планировщике по cron-выражению из пяти полей.
func (j *ExpiryNotifier) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		n, err := j.Run(context.Background())
		if err != nil {
			j.log.WithError(err).Error("contract expiry job failed")
			return
		}
		j.log.WithField("contracts", n).Info("contract expiry notices sent")
	})
	return errors.Wrapf(err, "invalid schedule %q", spec)
}

// RunScheduler запускает планировщик и останавливает его при отмене ctx,
// дожидаясь завершения выполняющихся задач.
func RunScheduler(ctx context.Context, c *cron.Cron) error {
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
