package api

import (
	"fmt"
	"net/http"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) TestBalance() {
	s.mockWalletService.EXPECT().Balance(gomock.Any(), s.userID).Return(&domain.Wallet{
		UserID:            s.userID,
		Balance:           decimal.RequireFromString("30.5"),
		CommissionBalance: decimal.RequireFromString("0.004"),
	}, nil)

	res := s.do(http.MethodGet, RouteGroup+BalanceRoute, nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"balance":"30.5","commissionBalance":"0.004"}`, s.readBody(res))
}

func (s *HandlersTestSuite) TestDashboard() {
	s.mockWalletService.EXPECT().Summary(gomock.Any(), s.userID).Return(&service.WalletSummary{
		Balance:           decimal.NewFromInt(30),
		CommissionBalance: decimal.Zero,
		TotalOrders:       3,
		TotalSales:        decimal.NewFromInt(40),
		TotalTopUps:       1,
		TotalTopUpValue:   decimal.NewFromInt(70),
	}, nil)

	res := s.do(http.MethodGet, RouteGroup+DashboardRoute, nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{
		"balance":"30",
		"commissionBalance":"0",
		"totalOrders":3,
		"totalSales":"40",
		"totalTopUps":1,
		"totalTopUpValue":"70"
	}`, s.readBody(res))
}

func (s *HandlersTestSuite) TestWithdrawCommission() {
	gomock.InOrder(
		s.mockWalletService.EXPECT().WithdrawCommission(gomock.Any(), s.userID).Return(&domain.Wallet{
			Balance:           decimal.RequireFromString("30.004"),
			CommissionBalance: decimal.Zero,
		}, decimal.RequireFromString("0.004"), nil),
		s.mockWalletService.EXPECT().WithdrawCommission(gomock.Any(), s.userID).
			Return(nil, decimal.Zero, fmt.Errorf("withdrawing commission: %w", domain.ErrNothingToWithdraw)),
	)

	res := s.do(http.MethodPost, RouteGroup+CommissionWithdrawRoute, nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"balance":"30.004","commissionBalance":"0","withdrawn":"0.004"}`, s.readBody(res))

	res = s.do(http.MethodPost, RouteGroup+CommissionWithdrawRoute, nil, s.asUser())
	s.Equal(http.StatusConflict, res.StatusCode)
	s.Contains(s.readBody(res), domain.ErrNothingToWithdraw.Error())
}
