package domain

import (
	"errors"
)

// Ошибки слоя хранения.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")
)

// Ошибки валидации входных данных.
var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrInvalidFilter    = errors.New("invalid order filter")
	ErrPriceMismatch    = errors.New("price does not match catalog")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidReference = errors.New("invalid payment reference")
)

// Ошибки бизнес-правил.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBundleUnavailable = errors.New("bundle unavailable")
	ErrNotCancellable    = errors.New("order is not cancellable")
	ErrWindowExpired     = errors.New("cancellation window expired")
	ErrNotForwardable    = errors.New("order can not be forwarded")
	ErrAlreadyCompleted  = errors.New("order already completed")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrForwardingBusy    = errors.New("order is being forwarded")
	ErrNothingToWithdraw = errors.New("commission balance is empty")
)

// ErrForwardingFailed поставщик отклонил заказ или недоступен.
var ErrForwardingFailed = errors.New("forwarding to supplier failed")
