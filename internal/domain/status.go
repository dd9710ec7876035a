package domain

import (
	"fmt"
	"strings"
)

// OrderStatus статус заказа. Значения совпадают с тем, что хранится в колонке orders.status.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusFailed     OrderStatus = "Failed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusFailed,
	OrderStatusCancelled,
}

// transitions допустимые переходы. Failed -> Completed возможен только через ручную переотправку заказа.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusFailed:     {OrderStatusCompleted},
}

// ParseOrderStatus приводит строку к OrderStatus без учета регистра. Для неизвестного значения возвращает
// ErrInvalidStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if strings.EqualFold(string(status), strings.TrimSpace(value)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

func (s OrderStatus) IsValid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

// IsTerminal Completed и Cancelled - конечные статусы.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo проверяет, разрешен ли переход из s в next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Provider идентификатор мобильного оператора.
type Provider string

const (
	ProviderMTN        Provider = "MTN"
	ProviderTelecel    Provider = "Telecel"
	ProviderAirtelTigo Provider = "AirtelTigo"
)

var providers = []Provider{ProviderMTN, ProviderTelecel, ProviderAirtelTigo}

// ParseProvider приводит строку к Provider без учета регистра.
func ParseProvider(value string) (Provider, error) {
	for _, p := range providers {
		if strings.EqualFold(string(p), strings.TrimSpace(value)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, value)
}

// OrderType тип записи: название оператора для покупки пакета или OrderTypeTopUp для пополнения.
type OrderType string

const OrderTypeTopUp OrderType = "Top-Up"

// TopUpDetails значение поля details для пополнений кошелька.
const TopUpDetails = "Wallet Top-Up"

func OrderTypeForProvider(p Provider) OrderType {
	return OrderType(p)
}

func (t OrderType) IsTopUp() bool {
	return t == OrderTypeTopUp
}

// AudienceTier ценовая группа каталога.
type AudienceTier string

const (
	AudienceSubscriber AudienceTier = "Subscriber"
	AudienceAgent      AudienceTier = "Agent"
)

// OrderFilter представление истории заказов пользователя.
type OrderFilter string

const (
	OrderFilterBundles OrderFilter = "bundles"
	OrderFilterTopUps  OrderFilter = "topups"
	OrderFilterAll     OrderFilter = "all"
)

// ParseOrderFilter пустая строка означает OrderFilterAll.
func ParseOrderFilter(value string) (OrderFilter, error) {
	switch OrderFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "", OrderFilterAll:
		return OrderFilterAll, nil
	case OrderFilterBundles:
		return OrderFilterBundles, nil
	case OrderFilterTopUps:
		return OrderFilterTopUps, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, value)
	}
}
