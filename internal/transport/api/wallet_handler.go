package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	svs WalletServicer
}

func NewWalletHandler(svs WalletServicer) *WalletHandler {
	return &WalletHandler{
		svs: svs,
	}
}

type BalanceResponse struct {
	Balance           decimal.Decimal `json:"balance"`
	CommissionBalance decimal.Decimal `json:"commissionBalance"`
}

func (w *WalletHandler) Balance(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	wallet, err := w.svs.Balance(reqCtx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		Balance:           wallet.Balance,
		CommissionBalance: wallet.CommissionBalance,
	})
}

type DashboardResponse struct {
	BalanceResponse
	TotalOrders     int64           `json:"totalOrders"`
	TotalSales      decimal.Decimal `json:"totalSales"`
	TotalTopUps     int64           `json:"totalTopUps"`
	TotalTopUpValue decimal.Decimal `json:"totalTopUpValue"`
}

func (w *WalletHandler) Dashboard(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := w.svs.Summary(reqCtx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		BalanceResponse: BalanceResponse{
			Balance:           summary.Balance,
			CommissionBalance: summary.CommissionBalance,
		},
		TotalOrders:     summary.TotalOrders,
		TotalSales:      summary.TotalSales,
		TotalTopUps:     summary.TotalTopUps,
		TotalTopUpValue: summary.TotalTopUpValue,
	})
}

type WithdrawResponse struct {
	BalanceResponse
	Withdrawn decimal.Decimal `json:"withdrawn"`
}

// WithdrawCommission POST RouteGroup + CommissionWithdrawRoute. Переводит комиссию на основной баланс.
func (w *WalletHandler) WithdrawCommission(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	wallet, withdrawn, err := w.svs.WithdrawCommission(reqCtx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, WithdrawResponse{
		BalanceResponse: BalanceResponse{
			Balance:           wallet.Balance,
			CommissionBalance: wallet.CommissionBalance,
		},
		Withdrawn: withdrawn,
	})
}
