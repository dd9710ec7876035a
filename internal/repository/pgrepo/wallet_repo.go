package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, created_at, updated_at, tier, wallet_balance, commission_balance, referrer_id`

type WalletRepository struct {
	conn DBTX
}

func NewWalletRepository(conn DBTX) *WalletRepository {
	return &WalletRepository{conn: conn}
}

// LockByUserID читает кошелек и блокирует строку до конца транзакции (SELECT ... FOR UPDATE).
// Вне транзакции блокировка бессмысленна, поэтому метод вызывается только через UOW.Do.
func (w *WalletRepository) LockByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx, `SELECT `+walletColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "locking wallet of user %d", userID)
	}
	return wallet, nil
}

func (w *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx, `SELECT `+walletColumns+` FROM users WHERE id = $1`, userID)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "getting wallet of user %d", userID)
	}
	return wallet, nil
}

// UpdateBalances записывает оба баланса кошелька.
func (w *WalletRepository) UpdateBalances(
	ctx context.Context,
	args repoargs.UpdateWalletBalances,
) (*domain.Wallet, error) {
	row := w.conn.QueryRow(ctx,
		`UPDATE users SET wallet_balance = $2, commission_balance = $3, updated_at = NOW()
		WHERE id = $1 RETURNING `+walletColumns,
		args.UserID, args.Balance, args.CommissionBalance,
	)
	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "updating balances of user %d", args.UserID)
	}
	return wallet, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		wallet domain.Wallet
		tier   string
	)
	if err := row.Scan(
		&wallet.UserID,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
		&tier,
		&wallet.Balance,
		&wallet.CommissionBalance,
		&wallet.ReferrerID,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	wallet.Tier = domain.AudienceTier(tier)
	return &wallet, nil
}
