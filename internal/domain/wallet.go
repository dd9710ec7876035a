package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale число знаков после запятой, с которым суммы хранятся в базе (NUMERIC(12,4)).
const MoneyScale int32 = 4

// RoundMoney округляет сумму до MoneyScale знаков так же, как это сделала бы база при сохранении.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// Debit списывает amount с основного баланса. Баланс никогда не уходит в минус: при нехватке средств
// возвращается ErrInsufficientFunds и кошелек не меняется.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit %s: %w", amount, ErrInvalidAmount)
	}
	if amount.GreaterThan(w.Balance) {
		return fmt.Errorf("debit %s of %s: %w", amount, w.Balance, ErrInsufficientFunds)
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Credit зачисляет amount на основной баланс.
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit %s: %w", amount, ErrInvalidAmount)
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// AccrueCommission зачисляет комиссию. Нулевая комиссия допустима (например при нулевой ставке).
func (w *Wallet) AccrueCommission(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("accrue commission %s: %w", amount, ErrInvalidAmount)
	}
	w.CommissionBalance = w.CommissionBalance.Add(amount)
	return nil
}

// WithdrawCommission переводит весь баланс комиссионных на основной баланс и возвращает переведенную сумму.
func (w *Wallet) WithdrawCommission() (decimal.Decimal, error) {
	amount := w.CommissionBalance
	if !amount.IsPositive() {
		return decimal.Zero, ErrNothingToWithdraw
	}
	w.CommissionBalance = decimal.Zero
	w.Balance = w.Balance.Add(amount)
	return amount, nil
}

// RefundPurchase возвращает покупку: зачисляет amount и списывает начисленную за нее комиссию commission.
//
// Комиссия списывается с баланса комиссионных. Если пользователь уже вывел ее на основной баланс, недостающая
// часть удерживается из возврата, поэтому цикл покупка-отмена ничего не добавляет кошельку. Возвращает
// фактически зачисленную на основной баланс сумму.
func (w *Wallet) RefundPurchase(amount, commission decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("refund %s: %w", amount, ErrInvalidAmount)
	}
	if commission.IsNegative() {
		return decimal.Zero, fmt.Errorf("refund commission %s: %w", commission, ErrInvalidAmount)
	}

	fromCommission := decimal.Min(commission, w.CommissionBalance)
	refund := amount.Sub(commission.Sub(fromCommission))

	w.CommissionBalance = w.CommissionBalance.Sub(fromCommission)
	w.Balance = w.Balance.Add(refund)
	return refund, nil
}
