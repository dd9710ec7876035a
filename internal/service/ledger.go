package service

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/pkg/uow"
)

// withLockedWallet единственное место, где меняются балансы кошелька.
//
// Алгоритм работы:
//  1. Блокирует строку кошелька userID до конца транзакции tx (SELECT ... FOR UPDATE).
//  2. Передает кошелек в fn, которая меняет его в памяти (Debit, Credit, AccrueCommission...).
//  3. Сохраняет оба баланса.
//
// Ошибка fn возвращается как есть, транзакцию откатывает вызывающий UOW.Do. Все операции над балансом одного
// пользователя выстраиваются в очередь на блокировке строки.
func withLockedWallet(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	fn func(w *domain.Wallet) error,
) (*domain.Wallet, error) {
	repo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}

	wallet, lockErr := repo.LockByUserID(ctx, userID)
	if lockErr != nil {
		return nil, lockErr //nolint:wrapcheck
	}

	if err := fn(wallet); err != nil {
		return nil, err
	}

	updated, updErr := repo.UpdateBalances(ctx, repoargs.UpdateWalletBalances{
		UserID:            wallet.UserID,
		Balance:           wallet.Balance,
		CommissionBalance: wallet.CommissionBalance,
	})
	if updErr != nil {
		return nil, updErr //nolint:wrapcheck
	}
	return updated, nil
}

func txOrderRepo(tx uow.TX) (OrderRepository, error) {
	return uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName)) //nolint:wrapcheck
}

func txJobRepo(tx uow.TX) (FulfillmentJobRepository, error) {
	return uow.GetAs[FulfillmentJobRepository]( //nolint:wrapcheck
		tx,
		uow.RepositoryName(repoargs.FulfillmentJobRepoName),
	)
}

func txBundleRepo(tx uow.TX) (BundleRepository, error) {
	return uow.GetAs[BundleRepository](tx, uow.RepositoryName(repoargs.BundleRepoName)) //nolint:wrapcheck
}
