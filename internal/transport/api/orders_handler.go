package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

// Bundles GET RouteGroup + BundlesRoute. Активный каталог в ценовой группе пользователя.
func (o *OrdersHandler) Bundles(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	bundles, err := o.orderSvs.Bundles(reqCtx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]BundleResponse, len(bundles))
	for i, b := range bundles {
		response[i] = BundleResponse{ID: b.ID, Provider: b.Provider, Volume: b.Volume, Price: b.Price}
	}
	c.JSON(http.StatusOK, response)
}

type PurchaseParams struct {
	Provider  string              `binding:"required"                json:"provider"`
	Volume    string              `binding:"required,max_bytes=32"   json:"volume"`
	Recipient string              `binding:"required,msisdn"         json:"recipient"`
	Price     decimal.NullDecimal `json:"price"`
}

type PurchaseResponse struct {
	Order             OrderResponse   `json:"order"`
	Balance           decimal.Decimal `json:"balance"`
	CommissionBalance decimal.Decimal `json:"commissionBalance"`
}

// Create POST RouteGroup + OrdersRoute. Покупка пакета.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params PurchaseParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	provider, err := domain.ParseProvider(params.Provider)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := o.orderSvs.Purchase(reqCtx, service.PurchaseArgs{
		UserID:        getUserIDFromContext(c),
		Provider:      provider,
		Volume:        params.Volume,
		Recipient:     params.Recipient,
		ExpectedPrice: params.Price,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PurchaseResponse{
		Order:             newOrderResponse(*result.Order),
		Balance:           result.Balance,
		CommissionBalance: result.CommissionBalance,
	})
}

// Index GET RouteGroup + OrdersRoute. История заказов с фильтром bundles/topups/all.
func (o *OrdersHandler) Index(c *gin.Context) {
	var query pageQuery
	if bindErr := c.ShouldBindQuery(&query); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}
	filter, err := domain.ParseOrderFilter(query.Filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.ListByUser(reqCtx, getUserIDFromContext(c), filter, query.Page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrdersPageResponse(query.Page, orders, newOrderResponse))
}

type CancelResponse struct {
	Order             OrderResponse   `json:"order"`
	Balance           decimal.Decimal `json:"balance"`
	CommissionBalance decimal.Decimal `json:"commission_balance"`
	Refunded          decimal.Decimal `json:"refunded"`
}

// Cancel POST RouteGroup + OrderCancelRoute.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	var uri orderURI
	if bindErr := c.ShouldBindUri(&uri); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := o.orderSvs.Cancel(reqCtx, uri.ID, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelResponse{
		Order:             newOrderResponse(*result.Order),
		Balance:           result.Balance,
		CommissionBalance: result.CommissionBalance,
		Refunded:          result.Refunded,
	})
}
