package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/pkg/uow"
)

type FulfilOutcome string

const (
	FulfilOutcomeCompleted FulfilOutcome = "completed"
	FulfilOutcomeFailed    FulfilOutcome = "failed"
	FulfilOutcomeSkipped   FulfilOutcome = "skipped"
)

type FulfillmentService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	jobRepo   FulfillmentJobRepository
	forwarder Forwarder
	notifier  Notifier
	settings  Settings
	now       func() time.Time
}

func NewFulfillmentService(
	u uow.UOW,
	forwarder Forwarder,
	notifier Notifier,
	settings Settings,
) (*FulfillmentService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	jobRepo, err := uow.GetRepositoryAs[FulfillmentJobRepository](
		u,
		uow.RepositoryName(repoargs.FulfillmentJobRepoName),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &FulfillmentService{
		uow:       u,
		orderRepo: orderRepo,
		jobRepo:   jobRepo,
		forwarder: forwarder,
		notifier:  notifier,
		settings:  settings.withDefaults(),
		now:       time.Now,
	}, nil
}

// ClaimDueJobs забирает из очереди задачи, срок которых наступил. Забранная задача удалена из очереди и больше
// никому не достанется.
func (f *FulfillmentService) ClaimDueJobs(ctx context.Context, limit uint) ([]domain.FulfillmentJob, error) {
	jobs, err := f.jobRepo.ClaimDue(ctx, f.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("claiming due jobs: %w", err)
	}
	return jobs, nil
}

// errNotDue заказ больше не ждет отправки обработчиком очереди.
var errNotDue = errors.New("order is not awaiting fulfillment")

// Fulfil единственная попытка отправить заказ поставщику.
//
// Заказ перечитывается под блокировкой: если он уже не Processing (например отменен) или его прямо сейчас
// отправляет оператор, поставщик не вызывается и статус не меняется - FulfilOutcomeSkipped. Успешная отправка
// переводит заказ в Completed. Ошибка отправки переводит заказ в Failed, уведомляет оператора и возвращается
// вместе с FulfilOutcomeFailed.
func (f *FulfillmentService) Fulfil(ctx context.Context, orderID int64) (FulfilOutcome, error) {
	order, err := f.beginForwarding(ctx, orderID, func(o *domain.Order) error {
		if o.Status != domain.OrderStatusProcessing {
			return errNotDue
		}
		return nil
	})
	if errors.Is(err, errNotDue) || errors.Is(err, domain.ErrForwardingBusy) {
		return FulfilOutcomeSkipped, nil
	}
	if err != nil {
		return "", fmt.Errorf("fulfilling order %d: %w", orderID, err)
	}

	if _, fwdErr := f.forwarder.Forward(ctx, *order); fwdErr != nil {
		failed, setErr := f.orderRepo.SetStatus(ctx, repoargs.SetOrderStatus{
			ID:   orderID,
			From: []domain.OrderStatus{domain.OrderStatusProcessing},
			To:   domain.OrderStatusFailed,
		})
		if setErr != nil {
			return "", fmt.Errorf("fulfilling order %d: %w", orderID, errors.Join(fwdErr, setErr))
		}
		f.notifier.FulfillmentFailed(ctx, *failed, fwdErr)
		return FulfilOutcomeFailed, fmt.Errorf("fulfilling order %d: %w: %w", orderID, domain.ErrForwardingFailed, fwdErr)
	}

	if _, err = f.orderRepo.SetStatus(ctx, repoargs.SetOrderStatus{
		ID:   orderID,
		From: []domain.OrderStatus{domain.OrderStatusProcessing},
		To:   domain.OrderStatusCompleted,
	}); err != nil {
		return "", fmt.Errorf("completing order %d: %w", orderID, err)
	}
	return FulfilOutcomeCompleted, nil
}

// ForwardNow ручная переотправка заказа оператором. Разрешена для Processing и Failed.
// Completed - domain.ErrAlreadyCompleted, Cancelled - domain.ErrNotForwardable, заказ уже отправляется -
// domain.ErrForwardingBusy.
//
// До вызова поставщика заказ снимается из очереди и помечается как отправляемый, так что ни отмена, ни обработчик
// очереди не пересекаются с ручной отправкой. При успехе заказ становится Completed. При ошибке поставщика статус
// не меняется, отметка снимается, а заказ в Processing возвращается в очередь. Ошибка оборачивает
// domain.ErrForwardingFailed.
func (f *FulfillmentService) ForwardNow(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := f.beginForwarding(ctx, orderID, func(o *domain.Order) error {
		switch o.Status {
		case domain.OrderStatusCompleted:
			return domain.ErrAlreadyCompleted
		case domain.OrderStatusCancelled:
			return domain.ErrNotForwardable
		}
		if o.Type.IsTopUp() {
			return fmt.Errorf("top-up: %w", domain.ErrNotForwardable)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("forwarding order %d: %w", orderID, err)
	}

	if _, fwdErr := f.forwarder.Forward(ctx, *order); fwdErr != nil {
		if abortErr := f.abortForwarding(ctx, order); abortErr != nil {
			fwdErr = errors.Join(fwdErr, abortErr)
		}
		return nil, fmt.Errorf("forwarding order %d: %w: %w", orderID, domain.ErrForwardingFailed, fwdErr)
	}

	completed, err := f.orderRepo.SetStatus(ctx, repoargs.SetOrderStatus{
		ID:   orderID,
		From: []domain.OrderStatus{order.Status},
		To:   domain.OrderStatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("completing forwarded order %d: %w", orderID, err)
	}
	return completed, nil
}

// beginForwarding под блокировкой строки заказа проверяет его через check, снимает задачу из очереди и ставит
// отметку отправки. Отметку снимает смена статуса или abortForwarding, брошенная отметка истекает через
// ForwardingLease.
func (f *FulfillmentService) beginForwarding(
	ctx context.Context,
	orderID int64,
	check func(o *domain.Order) error,
) (*domain.Order, error) {
	var marked *domain.Order
	txErr := f.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
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
		if err = check(order); err != nil {
			return err
		}
		now := f.now()
		if order.ForwardingInProgress(now, f.settings.ForwardingLease) {
			return fmt.Errorf("since %s: %w", order.ForwardingAt.Format(time.RFC3339), domain.ErrForwardingBusy)
		}

		if _, err = jobRepo.Delete(c, orderID); err != nil {
			return err //nolint:wrapcheck
		}
		marked, err = orderRepo.MarkForwarding(c, orderID, now)
		return err //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return marked, nil
}

// abortForwarding откатывает beginForwarding после отказа поставщика: снимает отметку и возвращает заказ в
// Processing в очередь со сроком, который был у него при покупке.
func (f *FulfillmentService) abortForwarding(ctx context.Context, order *domain.Order) error {
	return f.uow.Do(ctx, func(c context.Context, tx uow.TX) error { //nolint:wrapcheck
		orderRepo, err := txOrderRepo(tx)
		if err != nil {
			return err
		}
		jobRepo, err := txJobRepo(tx)
		if err != nil {
			return err
		}

		if err = orderRepo.ClearForwarding(c, order.ID); err != nil {
			return err //nolint:wrapcheck
		}
		if order.Status != domain.OrderStatusProcessing {
			return nil
		}
		// задачу снял beginForwarding, а новые ставит только покупка, так что ключ свободен.
		_, err = jobRepo.Schedule(c, order.ID, order.CreatedAt.Add(f.settings.FulfillmentDelay))
		return err //nolint:wrapcheck
	})
}

// ListAll страница всех заказов для оператора.
func (f *FulfillmentService) ListAll(ctx context.Context, page uint) (*repoargs.OrdersPage, error) {
	orders, err := f.orderRepo.ListAll(ctx, repoargs.ListAllOrders{Page: page, PageSize: f.settings.PageSize})
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}
	return orders, nil
}

func (f *FulfillmentService) Stats(ctx context.Context) (*repoargs.OrderStats, error) {
	stats, err := f.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting order stats: %w", err)
	}
	return stats, nil
}
