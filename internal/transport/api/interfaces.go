package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/shopspring/decimal"
)

type OrderServicer interface {
	Purchase(ctx context.Context, args service.PurchaseArgs) (*service.PurchaseResult, error)
	Cancel(ctx context.Context, orderID, userID int64) (*service.CancelResult, error)
	ListByUser(
		ctx context.Context,
		userID int64,
		filter domain.OrderFilter,
		page uint,
	) (*repoargs.OrdersPage, error)
	Bundles(ctx context.Context, userID int64) ([]domain.Bundle, error)
}

type WalletServicer interface {
	Balance(ctx context.Context, userID int64) (*domain.Wallet, error)
	Summary(ctx context.Context, userID int64) (*service.WalletSummary, error)
	WithdrawCommission(ctx context.Context, userID int64) (*domain.Wallet, decimal.Decimal, error)
	CreditTopUp(ctx context.Context, args service.TopUpArgs) (*service.TopUpResult, error)
}

// AdminServicer операторские операции над заказами.
type AdminServicer interface {
	ListAll(ctx context.Context, page uint) (*repoargs.OrdersPage, error)
	ForwardNow(ctx context.Context, orderID int64) (*domain.Order, error)
	Stats(ctx context.Context) (*repoargs.OrderStats, error)
}
