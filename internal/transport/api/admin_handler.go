package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// forwardTimeout ручная переотправка ждет ответа поставщика.
const forwardTimeout = 30 * time.Second

type AdminHandler struct {
	svs AdminServicer
}

func NewAdminHandler(svs AdminServicer) *AdminHandler {
	return &AdminHandler{
		svs: svs,
	}
}

// Orders GET RouteGroup + AdminOrdersRoute.
func (a *AdminHandler) Orders(c *gin.Context) {
	var query pageQuery
	if bindErr := c.ShouldBindQuery(&query); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := a.svs.ListAll(reqCtx, query.Page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrdersPageResponse(query.Page, orders, newAdminOrderResponse))
}

// Forward POST RouteGroup + AdminForwardRoute. Синхронно отправляет заказ поставщику. Ошибка поставщика - 502,
// статус заказа при этом не меняется.
func (a *AdminHandler) Forward(c *gin.Context) {
	var uri orderURI
	if bindErr := c.ShouldBindUri(&uri); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, forwardTimeout)
	defer cancel()

	order, err := a.svs.ForwardNow(reqCtx, uri.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newAdminOrderResponse(*order)})
}

type StatsResponse struct {
	ByStatus    map[domain.OrderStatus]int64 `json:"byStatus"`
	TotalSales  decimal.Decimal              `json:"totalSales"`
	TotalProfit decimal.Decimal              `json:"totalProfit"`
}

func (a *AdminHandler) Stats(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	stats, err := a.svs.Stats(reqCtx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		ByStatus:    stats.ByStatus,
		TotalSales:  stats.TotalSales,
		TotalProfit: stats.TotalProfit,
	})
}
