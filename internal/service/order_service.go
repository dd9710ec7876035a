package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	uow            uow.UOW
	walletRepo     WalletRepository
	bundleRepo     BundleRepository
	orderRepo      OrderRepository
	settings       Settings
	now            func() time.Time
	newOrderNumber func() string
}

func NewOrderService(u uow.UOW, settings Settings) (*OrderService, error) {
	walletRepo, err := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	bundleRepo, err := uow.GetRepositoryAs[BundleRepository](u, uow.RepositoryName(repoargs.BundleRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &OrderService{
		uow:            u,
		walletRepo:     walletRepo,
		bundleRepo:     bundleRepo,
		orderRepo:      orderRepo,
		settings:       settings.withDefaults(),
		now:            time.Now,
		newOrderNumber: uuid.NewString,
	}, nil
}

type PurchaseArgs struct {
	UserID    int64
	Provider  domain.Provider
	Volume    string
	Recipient string
	// ExpectedPrice цена, которую видел клиент. Используется только для сверки с каталогом.
	ExpectedPrice decimal.NullDecimal
}

type PurchaseResult struct {
	Order             *domain.Order
	Balance           decimal.Decimal
	CommissionBalance decimal.Decimal
}

// Purchase покупка пакета.
//
// Алгоритм работы (одна транзакция):
//  1. Блокирует кошелек покупателя. Ценовая группа каталога берется из кошелька.
//  2. Ищет активный пакет (provider, volume), иначе domain.ErrBundleUnavailable.
//  3. Сверяет ExpectedPrice с ценой каталога, при расхождении domain.ErrPriceMismatch. Списывается всегда цена
//     каталога.
//  4. Списывает цену (domain.ErrInsufficientFunds при нехватке) и начисляет комиссию price * CommissionRate,
//     округленную до domain.MoneyScale знаков.
//  5. Создает заказ в статусе Processing с прибылью price - cost и начисленной комиссией.
//  6. Ставит задачу отправки на now + FulfillmentDelay.
//
// Любая ошибка откатывает все шаги: нет ни заказа, ни списания, ни задачи.
func (o *OrderService) Purchase(ctx context.Context, args PurchaseArgs) (*PurchaseResult, error) {
	recipient := strings.TrimSpace(args.Recipient)
	if recipient == "" {
		return nil, fmt.Errorf("purchasing bundle: %w", domain.ErrInvalidRecipient)
	}

	var result PurchaseResult
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var (
			bundle     *domain.Bundle
			commission decimal.Decimal
		)
		wallet, err := withLockedWallet(c, tx, args.UserID, func(w *domain.Wallet) error {
			var findErr error
			bundle, findErr = o.findBundle(c, tx, args.Provider, args.Volume, w.Tier)
			if findErr != nil {
				return findErr
			}
			if args.ExpectedPrice.Valid && !args.ExpectedPrice.Decimal.Equal(bundle.Price) {
				return fmt.Errorf("expected %s, catalog %s: %w",
					args.ExpectedPrice.Decimal, bundle.Price, domain.ErrPriceMismatch)
			}
			if debitErr := w.Debit(bundle.Price); debitErr != nil {
				return debitErr //nolint:wrapcheck
			}
			commission = domain.RoundMoney(bundle.Price.Mul(o.settings.CommissionRate))
			return w.AccrueCommission(commission)
		})
		if err != nil {
			return err
		}

		order, err := o.createProcessingOrder(c, tx, args.UserID, bundle, commission, recipient)
		if err != nil {
			return err
		}

		result = PurchaseResult{
			Order:             order,
			Balance:           wallet.Balance,
			CommissionBalance: wallet.CommissionBalance,
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("purchasing bundle: %w", txErr)
	}
	return &result, nil
}

func (o *OrderService) findBundle(
	ctx context.Context,
	tx uow.TX,
	provider domain.Provider,
	volume string,
	tier domain.AudienceTier,
) (*domain.Bundle, error) {
	repo, err := txBundleRepo(tx)
	if err != nil {
		return nil, err
	}
	bundle, err := repo.FindActive(ctx, repoargs.FindBundle{Provider: provider, Volume: volume, Audience: tier})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", provider, volume, domain.ErrBundleUnavailable)
		}
		return nil, err //nolint:wrapcheck
	}
	return bundle, nil
}

// createProcessingOrder создает заказ и в той же транзакции ставит его в очередь отправки.
func (o *OrderService) createProcessingOrder(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	bundle *domain.Bundle,
	commission decimal.Decimal,
	recipient string,
) (*domain.Order, error) {
	orderRepo, err := txOrderRepo(tx)
	if err != nil {
		return nil, err
	}
	jobRepo, err := txJobRepo(tx)
	if err != nil {
		return nil, err
	}

	order, err := orderRepo.Create(ctx, repoargs.CreateOrder{
		UserID:      userID,
		OrderNumber: o.newOrderNumber(),
		Type:        domain.OrderTypeForProvider(bundle.Provider),
		Details:     bundle.Volume,
		Amount:      bundle.Price,
		Recipient:   &recipient,
		Status:      domain.OrderStatusProcessing,
		Profit:      decimal.NewNullDecimal(bundle.Profit()),
		Commission:  decimal.NewNullDecimal(commission),
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if _, err = jobRepo.Schedule(ctx, order.ID, o.now().Add(o.settings.FulfillmentDelay)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

type CancelResult struct {
	Order             *domain.Order
	Balance           decimal.Decimal
	CommissionBalance decimal.Decimal
	// Refunded зачисленная на основной баланс сумма: цена заказа за вычетом комиссии, которую уже вывели.
	Refunded decimal.Decimal
}

// Cancel отменяет заказ пользователя с возвратом полной суммы.
//
// Проверки по порядку:
//  1. Заказ принадлежит userID, иначе domain.ErrRecordNotFound (чужой заказ неотличим от несуществующего).
//  2. Статус ровно Processing, иначе domain.ErrNotCancellable.
//  3. С момента создания прошло меньше CancelWindow, иначе domain.ErrWindowExpired.
//  4. Заказ не отправляется поставщику прямо сейчас, иначе domain.ErrNotCancellable.
//
// Возврат цены, списание начисленной за покупку комиссии, смена статуса и снятие задачи из очереди выполняются в
// одной транзакции под блокировкой заказа, поэтому повторная отмена всегда получает domain.ErrNotCancellable.
func (o *OrderService) Cancel(ctx context.Context, orderID, userID int64) (*CancelResult, error) {
	var result CancelResult
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, err := txOrderRepo(tx)
		if err != nil {
			return err
		}
		jobRepo, err := txJobRepo(tx)
		if err != nil {
			return err
		}

		order, err := orderRepo.LockByID(c, orderID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if order.UserID != userID {
			return fmt.Errorf("order %d: %w", orderID, domain.ErrRecordNotFound)
		}
		if order.Status != domain.OrderStatusProcessing {
			return fmt.Errorf("order %d is %s: %w", orderID, order.Status, domain.ErrNotCancellable)
		}
		if elapsed := o.now().Sub(order.CreatedAt); elapsed >= o.settings.CancelWindow {
			return fmt.Errorf("order %d created %s ago: %w", orderID, elapsed.Round(time.Second), domain.ErrWindowExpired)
		}
		if order.ForwardingAt != nil {
			return fmt.Errorf("order %d is being forwarded: %w", orderID, domain.ErrNotCancellable)
		}

		var refunded decimal.Decimal
		wallet, err := withLockedWallet(c, tx, userID, func(w *domain.Wallet) error {
			var refundErr error
			refunded, refundErr = w.RefundPurchase(order.Amount, order.Commission.Decimal)
			return refundErr //nolint:wrapcheck
		})
		if err != nil {
			return err
		}

		cancelled, err := orderRepo.SetStatus(c, repoargs.SetOrderStatus{
			ID:   orderID,
			From: []domain.OrderStatus{domain.OrderStatusProcessing},
			To:   domain.OrderStatusCancelled,
		})
		if err != nil {
			return err //nolint:wrapcheck
		}
		if _, err = jobRepo.Delete(c, orderID); err != nil {
			return err //nolint:wrapcheck
		}

		result = CancelResult{
			Order:             cancelled,
			Balance:           wallet.Balance,
			CommissionBalance: wallet.CommissionBalance,
			Refunded:          refunded,
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling order: %w", txErr)
	}
	return &result, nil
}

// ListByUser страница истории пользователя. page начинается с 1.
func (o *OrderService) ListByUser(
	ctx context.Context,
	userID int64,
	filter domain.OrderFilter,
	page uint,
) (*repoargs.OrdersPage, error) {
	orders, err := o.orderRepo.ListByUser(ctx, repoargs.ListOrders{
		UserID:   userID,
		Filter:   filter,
		Page:     page,
		PageSize: o.settings.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// Bundles активный каталог в ценовой группе пользователя.
func (o *OrderService) Bundles(ctx context.Context, userID int64) ([]domain.Bundle, error) {
	wallet, err := o.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	bundles, err := o.bundleRepo.ListActive(ctx, wallet.Tier)
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	return bundles, nil
}
