package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletService struct {
	uow            uow.UOW
	walletRepo     WalletRepository
	orderRepo      OrderRepository
	newOrderNumber func() string
}

func NewWalletService(u uow.UOW) (*WalletService, error) {
	walletRepo, err := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &WalletService{
		uow:            u,
		walletRepo:     walletRepo,
		orderRepo:      orderRepo,
		newOrderNumber: uuid.NewString,
	}, nil
}

// Balance текущее состояние кошелька.
func (w *WalletService) Balance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := w.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	return wallet, nil
}

// Debit списывает amount под блокировкой кошелька. При нехватке средств возвращает domain.ErrInsufficientFunds,
// баланс не меняется.
func (w *WalletService) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		wallet, err := withLockedWallet(c, tx, userID, func(wallet *domain.Wallet) error {
			return wallet.Debit(amount)
		})
		if err != nil {
			return err
		}
		balance = wallet.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("debiting wallet of user %d: %w", userID, err)
	}
	return balance, nil
}

// Credit зачисляет amount под блокировкой кошелька.
func (w *WalletService) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		wallet, err := withLockedWallet(c, tx, userID, func(wallet *domain.Wallet) error {
			return wallet.Credit(amount)
		})
		if err != nil {
			return err
		}
		balance = wallet.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("crediting wallet of user %d: %w", userID, err)
	}
	return balance, nil
}

type TopUpArgs struct {
	UserID    int64
	Amount    decimal.Decimal
	Reference string
}

type TopUpResult struct {
	Order     *domain.Order
	Balance   decimal.Decimal
	Duplicate bool
}

// CreditTopUp зачисляет подтвержденный платеж и записывает завершенное пополнение. Ссылка платежа уникальна:
// повторное уведомление с той же ссылкой ничего не зачисляет и возвращает Duplicate = true.
func (w *WalletService) CreditTopUp(ctx context.Context, args TopUpArgs) (*TopUpResult, error) {
	if args.Reference == "" {
		return nil, fmt.Errorf("crediting top-up: %w", domain.ErrInvalidReference)
	}
	var result TopUpResult
	err := w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		wallet, err := withLockedWallet(c, tx, args.UserID, func(wallet *domain.Wallet) error {
			return wallet.Credit(args.Amount)
		})
		if err != nil {
			return err
		}

		orderRepo, err := txOrderRepo(tx)
		if err != nil {
			return err
		}
		reference := args.Reference
		order, err := orderRepo.Create(c, repoargs.CreateOrder{
			UserID:      args.UserID,
			OrderNumber: w.newOrderNumber(),
			Type:        domain.OrderTypeTopUp,
			Details:     domain.TopUpDetails,
			Amount:      args.Amount,
			Status:      domain.OrderStatusCompleted,
			Reference:   &reference,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}

		result.Order = order
		result.Balance = wallet.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return &TopUpResult{Duplicate: true}, nil
		}
		return nil, fmt.Errorf("crediting top-up `%s`: %w", args.Reference, err)
	}
	return &result, nil
}

// WithdrawCommission переносит весь баланс комиссионных на основной баланс.
func (w *WalletService) WithdrawCommission(ctx context.Context, userID int64) (*domain.Wallet, decimal.Decimal, error) {
	var (
		wallet    *domain.Wallet
		withdrawn decimal.Decimal
	)
	err := w.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		wallet, err = withLockedWallet(c, tx, userID, func(locked *domain.Wallet) error {
			var wErr error
			withdrawn, wErr = locked.WithdrawCommission()
			return wErr
		})
		return err
	})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdrawing commission of user %d: %w", userID, err)
	}
	return wallet, withdrawn, nil
}

type WalletSummary struct {
	Balance           decimal.Decimal
	CommissionBalance decimal.Decimal
	TotalOrders       int64
	TotalSales        decimal.Decimal
	TotalTopUps       int64
	TotalTopUpValue   decimal.Decimal
}

// Summary сводка для дашборда пользователя.
func (w *WalletService) Summary(ctx context.Context, userID int64) (*WalletSummary, error) {
	wallet, err := w.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summarizing wallet: %w", err)
	}
	orders, err := w.orderRepo.Summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summarizing wallet: %w", err)
	}
	return &WalletSummary{
		Balance:           wallet.Balance,
		CommissionBalance: wallet.CommissionBalance,
		TotalOrders:       orders.TotalOrders,
		TotalSales:        orders.TotalSales,
		TotalTopUps:       orders.TotalTopUps,
		TotalTopUpValue:   orders.TotalTopUpValue,
	}, nil
}
