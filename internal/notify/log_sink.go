// Package notify уведомления оператора.
package notify

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/sirupsen/logrus"
)

// LogSink пишет уведомления в лог с уровнем Warn. Реализует service.Notifier.
type LogSink struct {
	l *logrus.Entry
}

func NewLogSink(l *logrus.Logger) *LogSink {
	return &LogSink{l: l.WithFields(logrus.Fields{
		"component": "notify",
		"module":    "log_sink",
	})}
}

func (n *LogSink) FulfillmentFailed(_ context.Context, order domain.Order, cause error) {
	n.l.WithError(cause).WithFields(logrus.Fields{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"userID":      order.UserID,
		"type":        order.Type,
		"details":     order.Details,
		"recipient":   order.RecipientValue(),
	}).Warn("order fulfillment failed, manual action required")
}
