package repoargs

import "github.com/shopspring/decimal"

type UpdateWalletBalances struct {
	UserID            int64
	Balance           decimal.Decimal
	CommissionBalance decimal.Decimal
}
