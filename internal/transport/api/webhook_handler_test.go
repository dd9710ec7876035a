package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/fsdevblog/groph-bundles/internal/transport/api/testutils"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

func (s *HandlersTestSuite) webhook(payload any, signature string) *http.Response {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)
	if signature == "" {
		signature = SignPayload(body, s.paymentSecret)
	}
	return testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + PaymentWebhookRoute,
		Body:   bytes.NewReader(body),
	}, testutils.WithJSON(), testutils.WithHeader(SignatureHeader, signature))
}

func chargeSuccess(reference string, amount int64, userID any) map[string]any {
	return map[string]any{
		"event": EventChargeSuccess,
		"data": map[string]any{
			"reference": reference,
			"amount":    amount,
			"metadata": map[string]any{
				"action":  ActionWalletTopUp,
				"user_id": userID,
			},
		},
	}
}

func (s *HandlersTestSuite) TestWebhookCredits() {
	s.mockWalletService.EXPECT().CreditTopUp(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.TopUpArgs) (*service.TopUpResult, error) {
			s.Equal(int64(12), args.UserID)
			s.Equal("ref-1", args.Reference)
			s.True(decimal.RequireFromString("50.5").Equal(args.Amount), args.Amount.String())
			return &service.TopUpResult{Balance: decimal.RequireFromString("80.5")}, nil
		}).Times(2)

	res := s.webhook(chargeSuccess("ref-1", 5050, 12), "")
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"status":"credited","balance":"80.5"}`, s.readBody(res))

	// user_id строкой.
	res = s.webhook(chargeSuccess("ref-1", 5050, "12"), "")
	s.Equal(http.StatusOK, res.StatusCode)
	s.readBody(res)
}

func (s *HandlersTestSuite) TestWebhookDuplicate() {
	s.mockWalletService.EXPECT().CreditTopUp(gomock.Any(), gomock.Any()).
		Return(&service.TopUpResult{Duplicate: true}, nil)

	res := s.webhook(chargeSuccess("ref-2", 1000, 12), "")
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"status":"duplicate"}`, s.readBody(res))
}

func (s *HandlersTestSuite) TestWebhookRejectsBadSignature() {
	s.mockWalletService.EXPECT().CreditTopUp(gomock.Any(), gomock.Any()).Times(0)

	res := s.webhook(chargeSuccess("ref-3", 1000, 12), "deadbeef")
	s.Equal(http.StatusUnauthorized, res.StatusCode)
	s.readBody(res)

	res = s.webhook(chargeSuccess("ref-3", 1000, 12), "not-hex")
	s.Equal(http.StatusUnauthorized, res.StatusCode)
	s.readBody(res)
}

func (s *HandlersTestSuite) TestWebhookIgnoresOtherEvents() {
	s.mockWalletService.EXPECT().CreditTopUp(gomock.Any(), gomock.Any()).Times(0)

	other := chargeSuccess("ref-4", 1000, 12)
	other["event"] = "transfer.success"
	res := s.webhook(other, "")
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"status":"ignored"}`, s.readBody(res))

	purchase := chargeSuccess("ref-5", 1000, 12)
	purchase["data"].(map[string]any)["metadata"].(map[string]any)["action"] = "bundle_purchase" //nolint:forcetypeassert
	res = s.webhook(purchase, "")
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"status":"ignored"}`, s.readBody(res))
}

func (s *HandlersTestSuite) TestWebhookUnknownUser() {
	s.mockWalletService.EXPECT().CreditTopUp(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("crediting top-up: %w", domain.ErrRecordNotFound))

	res := s.webhook(chargeSuccess("ref-6", 1000, 404), "")
	s.Equal(http.StatusNotFound, res.StatusCode)
	s.readBody(res)

	res = s.webhook(chargeSuccess("ref-7", 1000, "abc"), "")
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.readBody(res)
}
