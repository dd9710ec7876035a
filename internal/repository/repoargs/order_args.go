package repoargs

import (
	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	UserID      int64
	OrderNumber string
	Type        domain.OrderType
	Details     string
	Amount      decimal.Decimal
	Recipient   *string
	Status      domain.OrderStatus
	Profit      decimal.NullDecimal
	Commission  decimal.NullDecimal
	Reference   *string
}

// SetOrderStatus переводит заказ в статус To, только если текущий статус входит в From.
type SetOrderStatus struct {
	ID   int64
	From []domain.OrderStatus
	To   domain.OrderStatus
}

type ListOrders struct {
	UserID   int64
	Filter   domain.OrderFilter
	Page     uint
	PageSize uint
}

type ListAllOrders struct {
	Page     uint
	PageSize uint
}

// OrdersPage страница заказов и общее число страниц.
type OrdersPage struct {
	Items      []domain.Order
	TotalPages uint
}

type OrderSummary struct {
	TotalOrders     int64
	TotalSales      decimal.Decimal
	TotalTopUps     int64
	TotalTopUpValue decimal.Decimal
}

type OrderStats struct {
	ByStatus    map[domain.OrderStatus]int64
	TotalSales  decimal.Decimal
	TotalProfit decimal.Decimal
}
