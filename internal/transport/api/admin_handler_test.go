package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) TestAdminOrders() {
	s.mockAdminService.EXPECT().ListAll(gomock.Any(), uint(3)).
		Return(&repoargs.OrdersPage{Items: []domain.Order{*s.processingOrder(1)}, TotalPages: 3}, nil)

	res := s.do(http.MethodGet, RouteGroup+AdminOrdersRoute+"?page=3", nil, s.asAdmin())
	s.Equal(http.StatusOK, res.StatusCode)

	var page OrdersPageResponse[AdminOrderResponse]
	s.Require().NoError(decodeResponse(res, &page))
	s.Require().Len(page.Items, 1)
	s.Equal(s.userID, page.Items[0].UserID)
	s.True(page.Items[0].Profit.Valid)
	s.True(decimal.NewFromInt(5).Equal(page.Items[0].Profit.Decimal))
}

func (s *HandlersTestSuite) TestAdminForward() {
	completed := s.processingOrder(4)
	completed.Status = domain.OrderStatusCompleted
	supplierErr := errors.New("supplier rejected order with status 422")

	s.mockAdminService.EXPECT().ForwardNow(gomock.Any(), int64(4)).Return(completed, nil)
	s.mockAdminService.EXPECT().ForwardNow(gomock.Any(), int64(5)).
		Return(nil, fmt.Errorf("forwarding order 5: %w: %w", domain.ErrForwardingFailed, supplierErr))
	s.mockAdminService.EXPECT().ForwardNow(gomock.Any(), int64(6)).
		Return(nil, fmt.Errorf("forwarding order 6: %w", domain.ErrAlreadyCompleted))
	s.mockAdminService.EXPECT().ForwardNow(gomock.Any(), int64(7)).
		Return(nil, fmt.Errorf("forwarding order 7: %w", domain.ErrNotForwardable))
	s.mockAdminService.EXPECT().ForwardNow(gomock.Any(), int64(8)).
		Return(nil, fmt.Errorf("forwarding order 8: %w", domain.ErrForwardingBusy))

	res := s.do(http.MethodPost, RouteGroup+"/admin/orders/4/forward", nil, s.asAdmin())
	s.Equal(http.StatusOK, res.StatusCode)
	var body map[string]AdminOrderResponse
	s.Require().NoError(decodeResponse(res, &body))
	s.Equal(domain.OrderStatusCompleted, body["order"].Status)

	res = s.do(http.MethodPost, RouteGroup+"/admin/orders/5/forward", nil, s.asAdmin())
	s.Equal(http.StatusBadGateway, res.StatusCode)
	// детали ответа поставщика клиенту не отдаются.
	s.NotContains(s.readBody(res), "422")

	res = s.do(http.MethodPost, RouteGroup+"/admin/orders/6/forward", nil, s.asAdmin())
	s.Equal(http.StatusConflict, res.StatusCode)
	s.readBody(res)

	res = s.do(http.MethodPost, RouteGroup+"/admin/orders/7/forward", nil, s.asAdmin())
	s.Equal(http.StatusConflict, res.StatusCode)
	s.readBody(res)

	res = s.do(http.MethodPost, RouteGroup+"/admin/orders/8/forward", nil, s.asAdmin())
	s.Equal(http.StatusConflict, res.StatusCode)
	s.Contains(s.readBody(res), domain.ErrForwardingBusy.Error())
}

func (s *HandlersTestSuite) TestAdminStats() {
	s.mockAdminService.EXPECT().Stats(gomock.Any()).Return(&repoargs.OrderStats{
		ByStatus: map[domain.OrderStatus]int64{
			domain.OrderStatusCompleted: 2,
			domain.OrderStatusFailed:    1,
		},
		TotalSales:  decimal.NewFromInt(40),
		TotalProfit: decimal.NewFromInt(10),
	}, nil)

	res := s.do(http.MethodGet, RouteGroup+AdminStatsRoute, nil, s.asAdmin())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{
		"byStatus":{"Completed":2,"Failed":1},
		"totalSales":"40",
		"totalProfit":"10"
	}`, s.readBody(res))
}
