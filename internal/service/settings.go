package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultFulfillmentDelay = 2 * time.Minute
	DefaultCancelWindow     = 110 * time.Second
	DefaultPageSize         = 10
	DefaultForwardingLease  = time.Minute
)

var DefaultCommissionRate = decimal.RequireFromString("0.0002")

// Settings параметры бизнес-правил. Окно отмены должно быть короче задержки отправки, иначе отмена может
// проиграть гонку обработчику очереди.
type Settings struct {
	CommissionRate   decimal.Decimal
	FulfillmentDelay time.Duration
	CancelWindow     time.Duration
	PageSize         uint

	// ForwardingLease сколько отметка об идущей отправке защищает заказ от отмены и повторной отправки.
	ForwardingLease time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		CommissionRate:   DefaultCommissionRate,
		FulfillmentDelay: DefaultFulfillmentDelay,
		CancelWindow:     DefaultCancelWindow,
		PageSize:         DefaultPageSize,
		ForwardingLease:  DefaultForwardingLease,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.CommissionRate.IsNegative() {
		s.CommissionRate = d.CommissionRate
	}
	if s.FulfillmentDelay <= 0 {
		s.FulfillmentDelay = d.FulfillmentDelay
	}
	if s.CancelWindow <= 0 {
		s.CancelWindow = d.CancelWindow
	}
	if s.PageSize == 0 {
		s.PageSize = d.PageSize
	}
	if s.ForwardingLease <= 0 {
		s.ForwardingLease = d.ForwardingLease
	}
	return s
}
