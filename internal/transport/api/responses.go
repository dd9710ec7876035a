package api

import (
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

type BundleResponse struct {
	ID       int64           `json:"id"`
	Provider domain.Provider `json:"provider"`
	Volume   string          `json:"volume"`
	Price    decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID          int64              `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Type        domain.OrderType   `json:"type"`
	Details     string             `json:"details"`
	Amount      decimal.Decimal    `json:"amount"`
	Recipient   string             `json:"recipient,omitempty"`
	Status      domain.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// AdminOrderResponse заказ в операторском списке: с владельцем и прибылью.
type AdminOrderResponse struct {
	OrderResponse
	UserID int64               `json:"userId"`
	Profit decimal.NullDecimal `json:"profit"`
}

type OrdersPageResponse[T any] struct {
	Items      []T  `json:"items"`
	Page       uint `json:"page"`
	TotalPages uint `json:"totalPages"`
}

func newOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Type:        o.Type,
		Details:     o.Details,
		Amount:      o.Amount,
		Recipient:   o.RecipientValue(),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}

func newAdminOrderResponse(o domain.Order) AdminOrderResponse {
	return AdminOrderResponse{
		OrderResponse: newOrderResponse(o),
		UserID:        o.UserID,
		Profit:        o.Profit,
	}
}

func newOrdersPageResponse[T any](
	page uint,
	orders *repoargs.OrdersPage,
	convert func(domain.Order) T,
) OrdersPageResponse[T] {
	items := make([]T, len(orders.Items))
	for i, o := range orders.Items {
		items[i] = convert(o)
	}
	return OrdersPageResponse[T]{
		Items:      items,
		Page:       max(page, 1),
		TotalPages: orders.TotalPages,
	}
}
