package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type WalletRepository interface {
	LockByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	UpdateBalances(ctx context.Context, args repoargs.UpdateWalletBalances) (*domain.Wallet, error)
}

type BundleRepository interface {
	FindActive(ctx context.Context, args repoargs.FindBundle) (*domain.Bundle, error)
	ListActive(ctx context.Context, audience domain.AudienceTier) ([]domain.Bundle, error)
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	LockByID(ctx context.Context, id int64) (*domain.Order, error)
	SetStatus(ctx context.Context, args repoargs.SetOrderStatus) (*domain.Order, error)
	MarkForwarding(ctx context.Context, id int64, at time.Time) (*domain.Order, error)
	ClearForwarding(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, args repoargs.ListOrders) (*repoargs.OrdersPage, error)
	ListAll(ctx context.Context, args repoargs.ListAllOrders) (*repoargs.OrdersPage, error)
	Summary(ctx context.Context, userID int64) (*repoargs.OrderSummary, error)
	Stats(ctx context.Context) (*repoargs.OrderStats, error)
}

type FulfillmentJobRepository interface {
	Schedule(ctx context.Context, orderID int64, dueAt time.Time) (*domain.FulfillmentJob, error)
	ClaimDue(ctx context.Context, now time.Time, limit uint) ([]domain.FulfillmentJob, error)
	Delete(ctx context.Context, orderID int64) (bool, error)
}

// Forwarder отправляет заказ поставщику.
type Forwarder interface {
	Forward(ctx context.Context, order domain.Order) (*domain.SupplierResponse, error)
}

// Notifier сообщает оператору о заказах, требующих ручного вмешательства.
type Notifier interface {
	FulfillmentFailed(ctx context.Context, order domain.Order, cause error)
}
