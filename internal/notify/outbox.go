package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

type OutboxConfig struct {
	Size       int
	Workers    int
	MaxRetries uint64
	Backoff    time.Duration
	// DrainTimeout ограничивает доставку оставшихся сообщений при остановке.
	DrainTimeout time.Duration
}

type OutboxStats struct {
	Delivered int64
	Failed    int64
	Dropped   int64
}

// Outbox держит ограниченную очередь уведомлений с собственной политикой повторов.
// Переполненная очередь отбрасывает новые сообщения, а не блокирует вызывающего.
type Outbox struct {
	dispatcher Dispatcher
	cfg        OutboxConfig
	log        logrus.FieldLogger

	mu      sync.RWMutex
	queue   chan Message
	closing *atomic.Bool
	wg      sync.WaitGroup

	delivered *atomic.Int64
	failed    *atomic.Int64
	dropped   *atomic.Int64
}

func NewOutbox(d Dispatcher, cfg OutboxConfig, log logrus.FieldLogger) *Outbox {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	return &Outbox{
		dispatcher: d,
		cfg:        cfg,
		log:        log,
		queue:      make(chan Message, cfg.Size),
		closing:    atomic.NewBool(false),
		delivered:  atomic.NewInt64(0),
		failed:     atomic.NewInt64(0),
		dropped:    atomic.NewInt64(0),
	}
}

// Notify ставит сообщения в очередь без ожидания.
func (o *Outbox) Notify(_ context.Context, msgs ...Message) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, m := range msgs {
		if o.closing.Load() {
			o.drop(m, "outbox is closed")
			continue
		}
		select {
		case o.queue <- m:
		default:
			o.drop(m, "outbox is full")
		}
	}
}

func (o *Outbox) drop(m Message, reason string) {
	o.dropped.Inc()
	o.log.WithFields(fields(m)).Warn("notification dropped: " + reason)
}

// Run запускает обработчиков и блокируется до отмены ctx,
// после чего дожидается разбора очереди.
func (o *Outbox) Run(ctx context.Context) error {
	workCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < o.cfg.Workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for m := range o.queue {
				o.deliver(workCtx, m)
			}
		}()
	}

	<-ctx.Done()
	o.Close()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(o.cfg.DrainTimeout):
		cancel()
		<-done
	}

	st := o.Stats()
	o.log.WithFields(logrus.Fields{
		"delivered": st.Delivered,
		"failed":    st.Failed,
		"dropped":   st.Dropped,
	}).Info("outbox stopped")
	return nil
}

// Close закрывает приём сообщений; повторный вызов безопасен.
func (o *Outbox) Close() {
	if o.closing.CAS(false, true) {
		o.mu.Lock()
		close(o.queue)
		o.mu.Unlock()
	}
}

func (o *Outbox) deliver(ctx context.Context, m Message) {
	b := retry.WithMaxRetries(o.cfg.MaxRetries, retry.NewExponential(o.cfg.Backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := o.dispatcher.Send(ctx, m); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		o.failed.Inc()
		o.log.WithFields(fields(m)).WithError(err).Error("notification delivery failed")
		return
	}
	o.delivered.Inc()
	delivered(ctx, m)
}

func (o *Outbox) Stats() OutboxStats {
	return OutboxStats{
		Delivered: o.delivered.Load(),
		Failed:    o.failed.Load(),
		Dropped:   o.dropped.Load(),
	}
}
