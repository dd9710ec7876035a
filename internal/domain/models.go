package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet денежная часть пользователя: основной баланс и баланс комиссионных.
type Wallet struct {
	UserID            int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Tier              AudienceTier
	Balance           decimal.Decimal
	CommissionBalance decimal.Decimal
	ReferrerID        *int64
}

type Bundle struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Provider     Provider
	Volume       string
	Price        decimal.Decimal
	SupplierCost decimal.Decimal
	Audience     AudienceTier
	Active       bool
}

// Profit маржа с продажи пакета. Что цена не ниже себестоимости - никак не гарантируется.
func (b Bundle) Profit() decimal.Decimal {
	return b.Price.Sub(b.SupplierCost)
}

// Order покупка пакета или пополнение кошелька.
type Order struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64
	OrderNumber string
	Type        OrderType
	Details     string
	Amount      decimal.Decimal
	Recipient   *string
	Status      OrderStatus
	Profit      decimal.NullDecimal
	Reference   *string

	// Commission комиссия, начисленная покупателю при покупке. При отмене списывается обратно.
	Commission decimal.NullDecimal

	// ForwardingAt момент, с которого заказ отправляется поставщику. Пока отправка идет, заказ нельзя отменить
	// и нельзя отправить повторно.
	ForwardingAt *time.Time
}

// ForwardingInProgress заказ сейчас отправляется поставщику. Отметка старше lease считается брошенной
// (процесс упал во время отправки).
func (o Order) ForwardingInProgress(now time.Time, lease time.Duration) bool {
	return o.ForwardingAt != nil && now.Sub(*o.ForwardingAt) < lease
}

// RecipientValue номер получателя или пустая строка для пополнений.
func (o Order) RecipientValue() string {
	if o.Recipient == nil {
		return ""
	}
	return *o.Recipient
}

// FulfillmentJob отложенная задача отправки заказа поставщику.
type FulfillmentJob struct {
	OrderID   int64
	DueAt     time.Time
	CreatedAt time.Time
}

// SupplierResponse ответ поставщика на успешную отправку заказа.
type SupplierResponse struct {
	StatusCode int
	Body       string
}
