package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) processingOrder(id int64) *domain.Order {
	recipient := "0551234567"
	return &domain.Order{
		ID:          id,
		CreatedAt:   time.Now(),
		UserID:      s.userID,
		OrderNumber: fmt.Sprintf("order-%d", id),
		Type:        domain.OrderTypeForProvider(domain.ProviderMTN),
		Details:     "5GB",
		Amount:      decimal.NewFromInt(20),
		Recipient:   &recipient,
		Status:      domain.OrderStatusProcessing,
		Profit:      decimal.NewNullDecimal(decimal.NewFromInt(5)),
	}
}

func (s *HandlersTestSuite) TestBundles() {
	s.mockOrderService.EXPECT().Bundles(gomock.Any(), s.userID).Return([]domain.Bundle{
		{ID: 1, Provider: domain.ProviderMTN, Volume: "5GB", Price: decimal.NewFromInt(20)},
	}, nil)

	res := s.do(http.MethodGet, RouteGroup+BundlesRoute, nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`[{"id":1,"provider":"MTN","volume":"5GB","price":"20"}]`, s.readBody(res))
}

func (s *HandlersTestSuite) TestPurchase() {
	s.mockOrderService.EXPECT().Purchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.PurchaseArgs) (*service.PurchaseResult, error) {
			s.Equal(s.userID, args.UserID)
			s.Equal(domain.ProviderMTN, args.Provider)
			s.Equal("5GB", args.Volume)
			s.Equal("0551234567", args.Recipient)
			s.True(args.ExpectedPrice.Valid)
			s.True(decimal.NewFromInt(20).Equal(args.ExpectedPrice.Decimal))
			return &service.PurchaseResult{
				Order:             s.processingOrder(10),
				Balance:           decimal.NewFromInt(30),
				CommissionBalance: decimal.RequireFromString("0.004"),
			}, nil
		})

	res := s.do(http.MethodPost, RouteGroup+OrdersRoute, map[string]any{
		"provider":  "mtn",
		"volume":    "5GB",
		"recipient": "0551234567",
		"price":     20,
	}, s.asUser())
	s.Equal(http.StatusCreated, res.StatusCode)

	var body PurchaseResponse
	s.Require().NoError(decodeResponse(res, &body))
	s.Equal(int64(10), body.Order.ID)
	s.Equal(domain.OrderStatusProcessing, body.Order.Status)
	s.True(decimal.NewFromInt(30).Equal(body.Balance))
	s.True(decimal.RequireFromString("0.004").Equal(body.CommissionBalance))
}

func (s *HandlersTestSuite) TestPurchaseWithoutPrice() {
	s.mockOrderService.EXPECT().Purchase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.PurchaseArgs) (*service.PurchaseResult, error) {
			s.False(args.ExpectedPrice.Valid)
			return &service.PurchaseResult{Order: s.processingOrder(11)}, nil
		})

	res := s.do(http.MethodPost, RouteGroup+OrdersRoute, map[string]any{
		"provider":  "Telecel",
		"volume":    "5GB",
		"recipient": "+233551234567",
	}, s.asUser())
	s.Equal(http.StatusCreated, res.StatusCode)
	s.readBody(res)
}

func (s *HandlersTestSuite) TestPurchaseServiceErrors() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{"bundle unavailable", domain.ErrBundleUnavailable, http.StatusNotFound, "bundle unavailable"},
		{"price mismatch", domain.ErrPriceMismatch, http.StatusConflict, "price does not match catalog"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient funds"},
		{"unknown", domain.ErrUnknown, http.StatusInternalServerError, "internal server error"},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			s.mockOrderService.EXPECT().Purchase(gomock.Any(), gomock.Any()).
				Return(nil, fmt.Errorf("purchasing bundle: %w", c.err))

			res := s.do(http.MethodPost, RouteGroup+OrdersRoute, map[string]any{
				"provider":  "MTN",
				"volume":    "5GB",
				"recipient": "0551234567",
			}, s.asUser())
			s.Equal(c.wantStatus, res.StatusCode)

			var body map[string]string
			s.Require().NoError(decodeResponse(res, &body))
			s.Equal(c.wantText, body["error"])
		})
	}
}

func (s *HandlersTestSuite) TestPurchaseValidation() {
	s.mockOrderService.EXPECT().Purchase(gomock.Any(), gomock.Any()).Times(0)

	cases := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "bad recipient",
			body:       map[string]any{"provider": "MTN", "volume": "5GB", "recipient": "12345"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "missing volume",
			body:       map[string]any{"provider": "MTN", "recipient": "0551234567"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "unknown provider",
			body:       map[string]any{"provider": "Glo", "volume": "5GB", "recipient": "0551234567"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "malformed price",
			body:       map[string]any{"provider": "MTN", "volume": "5GB", "recipient": "0551234567", "price": "abc"},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			res := s.do(http.MethodPost, RouteGroup+OrdersRoute, c.body, s.asUser())
			s.Equal(c.wantStatus, res.StatusCode)
			s.readBody(res)
		})
	}
}

func (s *HandlersTestSuite) TestIndex() {
	s.mockOrderService.EXPECT().ListByUser(gomock.Any(), s.userID, domain.OrderFilterTopUps, uint(2)).
		Return(&repoargs.OrdersPage{Items: []domain.Order{*s.processingOrder(3)}, TotalPages: 4}, nil)
	s.mockOrderService.EXPECT().ListByUser(gomock.Any(), s.userID, domain.OrderFilterAll, uint(0)).
		Return(&repoargs.OrdersPage{}, nil)

	res := s.do(http.MethodGet, RouteGroup+OrdersRoute+"?filter=topups&page=2", nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	var page OrdersPageResponse[OrderResponse]
	s.Require().NoError(decodeResponse(res, &page))
	s.Len(page.Items, 1)
	s.Equal(uint(2), page.Page)
	s.Equal(uint(4), page.TotalPages)

	res = s.do(http.MethodGet, RouteGroup+OrdersRoute, nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"items":[],"page":1,"totalPages":0}`, s.readBody(res))

	res = s.do(http.MethodGet, RouteGroup+OrdersRoute+"?filter=refunds", nil, s.asUser())
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.readBody(res)

	res = s.do(http.MethodGet, RouteGroup+OrdersRoute+"?page=-1", nil, s.asUser())
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.readBody(res)
}

func (s *HandlersTestSuite) TestCancel() {
	cancelled := s.processingOrder(5)
	cancelled.Status = domain.OrderStatusCancelled
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(5), s.userID).
		Return(&service.CancelResult{
			Order:             cancelled,
			Balance:           decimal.NewFromInt(50),
			CommissionBalance: decimal.Zero,
			Refunded:          decimal.NewFromInt(20),
		}, nil)
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(6), s.userID).
		Return(nil, fmt.Errorf("cancelling order: %w", domain.ErrWindowExpired))
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(7), s.userID).
		Return(nil, fmt.Errorf("cancelling order: %w", domain.ErrRecordNotFound))
	s.mockOrderService.EXPECT().Cancel(gomock.Any(), int64(8), s.userID).
		Return(nil, fmt.Errorf("cancelling order: %w", domain.ErrNotCancellable))

	res := s.do(http.MethodPost, RouteGroup+"/user/orders/5/cancel", nil, s.asUser())
	s.Equal(http.StatusOK, res.StatusCode)
	var body CancelResponse
	s.Require().NoError(decodeResponse(res, &body))
	s.Equal(domain.OrderStatusCancelled, body.Order.Status)
	s.True(decimal.NewFromInt(50).Equal(body.Balance))
	s.True(decimal.NewFromInt(20).Equal(body.Refunded))
	s.True(body.CommissionBalance.IsZero())

	cases := map[string]int{
		"/user/orders/6/cancel":   http.StatusConflict,
		"/user/orders/7/cancel":   http.StatusNotFound,
		"/user/orders/8/cancel":   http.StatusConflict,
		"/user/orders/abc/cancel": http.StatusBadRequest,
	}
	for url, status := range cases {
		res = s.do(http.MethodPost, RouteGroup+url, nil, s.asUser())
		s.Equal(status, res.StatusCode, url)
		s.readBody(res)
	}
}
