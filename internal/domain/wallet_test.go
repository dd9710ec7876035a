package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletTestSuite struct {
	suite.Suite
}

func TestWalletSuite(t *testing.T) {
	suite.Run(t, new(WalletTestSuite))
}

func (s *WalletTestSuite) TestDebit() {
	cases := []struct {
		name        string
		balance     decimal.Decimal
		amount      decimal.Decimal
		wantBalance decimal.Decimal
		wantErr     error
	}{
		{
			name:        "enough balance",
			balance:     decimal.NewFromInt(50),
			amount:      decimal.NewFromInt(20),
			wantBalance: decimal.NewFromInt(30),
		}, {
			name:        "whole balance",
			balance:     decimal.NewFromInt(20),
			amount:      decimal.NewFromInt(20),
			wantBalance: decimal.Zero,
		}, {
			name:        "not enough balance",
			balance:     decimal.NewFromInt(10),
			amount:      decimal.RequireFromString("10.0001"),
			wantBalance: decimal.NewFromInt(10),
			wantErr:     ErrInsufficientFunds,
		}, {
			name:        "zero amount",
			balance:     decimal.NewFromInt(10),
			amount:      decimal.Zero,
			wantBalance: decimal.NewFromInt(10),
			wantErr:     ErrInvalidAmount,
		},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			w := Wallet{UserID: 1, Balance: c.balance}
			err := w.Debit(c.amount)
			if c.wantErr != nil {
				s.Require().ErrorIs(err, c.wantErr)
			} else {
				s.Require().NoError(err)
			}
			s.True(c.wantBalance.Equal(w.Balance), "balance %s, want %s", w.Balance, c.wantBalance)
			s.False(w.Balance.IsNegative())
		})
	}
}

func (s *WalletTestSuite) TestCredit() {
	w := Wallet{Balance: decimal.NewFromInt(30)}
	s.Require().NoError(w.Credit(decimal.NewFromInt(20)))
	s.True(decimal.NewFromInt(50).Equal(w.Balance))

	s.ErrorIs(w.Credit(decimal.NewFromInt(-1)), ErrInvalidAmount)
}

func (s *WalletTestSuite) TestCommission() {
	w := Wallet{Balance: decimal.NewFromInt(30)}
	s.Require().NoError(w.AccrueCommission(decimal.RequireFromString("0.004")))
	s.Require().NoError(w.AccrueCommission(decimal.Zero))
	s.True(decimal.RequireFromString("0.004").Equal(w.CommissionBalance))

	amount, err := w.WithdrawCommission()
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("0.004").Equal(amount))
	s.True(decimal.RequireFromString("30.004").Equal(w.Balance))
	s.True(w.CommissionBalance.IsZero())

	_, err = w.WithdrawCommission()
	s.ErrorIs(err, ErrNothingToWithdraw)
}

func (s *WalletTestSuite) TestRefundPurchase() {
	d := decimal.RequireFromString
	cases := []struct {
		name           string
		wallet         Wallet
		amount         decimal.Decimal
		commission     decimal.Decimal
		wantRefund     decimal.Decimal
		wantBalance    decimal.Decimal
		wantCommission decimal.Decimal
		wantErr        error
	}{
		{
			name:           "commission still accrued",
			wallet:         Wallet{Balance: d("80"), CommissionBalance: d("0.004")},
			amount:         d("20"),
			commission:     d("0.004"),
			wantRefund:     d("20"),
			wantBalance:    d("100"),
			wantCommission: decimal.Zero,
		}, {
			name:           "commission withdrawn",
			wallet:         Wallet{Balance: d("80.004")},
			amount:         d("20"),
			commission:     d("0.004"),
			wantRefund:     d("19.996"),
			wantBalance:    d("100"),
			wantCommission: decimal.Zero,
		}, {
			name:           "commission partly withdrawn",
			wallet:         Wallet{Balance: d("80.003"), CommissionBalance: d("0.001")},
			amount:         d("20"),
			commission:     d("0.004"),
			wantRefund:     d("19.997"),
			wantBalance:    d("100"),
			wantCommission: decimal.Zero,
		}, {
			name:           "order without commission",
			wallet:         Wallet{Balance: d("80"), CommissionBalance: d("0.5")},
			amount:         d("20"),
			commission:     decimal.Zero,
			wantRefund:     d("20"),
			wantBalance:    d("100"),
			wantCommission: d("0.5"),
		}, {
			name:           "zero amount",
			wallet:         Wallet{Balance: d("80")},
			amount:         decimal.Zero,
			commission:     decimal.Zero,
			wantRefund:     decimal.Zero,
			wantBalance:    d("80"),
			wantCommission: decimal.Zero,
			wantErr:        ErrInvalidAmount,
		}, {
			name:           "negative commission",
			wallet:         Wallet{Balance: d("80")},
			amount:         d("20"),
			commission:     d("-0.004"),
			wantRefund:     decimal.Zero,
			wantBalance:    d("80"),
			wantCommission: decimal.Zero,
			wantErr:        ErrInvalidAmount,
		},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			w := c.wallet
			refund, err := w.RefundPurchase(c.amount, c.commission)
			if c.wantErr != nil {
				s.ErrorIs(err, c.wantErr)
			} else {
				s.Require().NoError(err)
			}
			s.True(c.wantRefund.Equal(refund), "refund %s", refund)
			s.True(c.wantBalance.Equal(w.Balance), "balance %s", w.Balance)
			s.True(c.wantCommission.Equal(w.CommissionBalance), "commission %s", w.CommissionBalance)
		})
	}
}

func (s *WalletTestSuite) TestRoundMoney() {
	commission := RoundMoney(decimal.RequireFromString("12.35").Mul(decimal.RequireFromString("0.0002")))
	s.Equal("0.0025", commission.String())
	s.Equal("0.0001", RoundMoney(decimal.RequireFromString("0.00005")).String())
}
