package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"

	walletBalanceCheck = "users_wallet_balance_check"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Особенности:
//   - pgx.ErrNoRows -> domain.ErrRecordNotFound.
//   - нарушение уникальности -> domain.ErrDuplicateKey.
//   - нарушение ограничения на неотрицательный баланс -> domain.ErrInsufficientFunds. Сервисы проверяют баланс
//     сами, ограничение в базе срабатывает только при ошибке в их логике.
//   - все остальное -> domain.ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case pgErr.Code == checkViolationCode && pgErr.ConstraintName == walletBalanceCheck:
			errType = domain.ErrInsufficientFunds
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
