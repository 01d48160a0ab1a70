// Package notify доставляет пользовательские уведомления.
// Ошибки доставки никогда не возвращаются вызывающей бизнес-операции.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Category string

const (
	CategoryBidding       Category = "BIDDING"
	CategoryInvitation    Category = "INVITATION"
	CategoryParticipation Category = "PARTICIPATION"
	CategoryEvaluation    Category = "EVALUATION"
	CategoryContract      Category = "CONTRACT"
	CategoryOrder         Category = "ORDER"
)

type Message struct {
	RecipientID int64    `json:"recipientId"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	RelatedID   int64    `json:"relatedId"`
	Category    Category `json:"category"`

	// OnDelivered вызывается один раз после успешной отправки.
	OnDelivered func(ctx context.Context) `json:"-"`
}

// Dispatcher доставляет сообщение во внешний канал.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier принимает сообщения и доставляет их сам; ошибок не возвращает.
type Notifier interface {
	Notify(ctx context.Context, msgs ...Message)
}

func fields(m Message) logrus.Fields {
	return logrus.Fields{
		"recipient": m.RecipientID,
		"category":  m.Category,
		"related":   m.RelatedID,
		"title":     m.Title,
	}
}

func delivered(ctx context.Context, m Message) {
	if m.OnDelivered != nil {
		m.OnDelivered(ctx)
	}
}

// Inline делает одну синхронную попытку и только логирует неудачу.
type Inline struct {
	dispatcher Dispatcher
	log        logrus.FieldLogger
}

func NewInline(d Dispatcher, log logrus.FieldLogger) *Inline {
	return &Inline{dispatcher: d, log: log}
}

func (n *Inline) Notify(ctx context.Context, msgs ...Message) {
	for _, m := range msgs {
		if err := n.dispatcher.Send(ctx, m); err != nil {
			n.log.WithFields(fields(m)).WithError(err).Warn("notification dispatch failed")
			continue
		}
		delivered(ctx, m)
	}
}

// LogDispatcher пишет уведомления в лог; используется, когда нет внешнего канала.
type LogDispatcher struct {
	log logrus.FieldLogger
}

func NewLogDispatcher(log logrus.FieldLogger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(ctx context.Context, m Message) error {
	d.log.WithFields(fields(m)).Info(m.Content)
	return nil
}
