package api

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/logger"
	"github.com/fsdevblog/groph-bundles/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bundles/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-bundles/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

// HandlersTestSuite общая обвязка тестов хендлеров: роутер на моках сервисов и токены пользователя и оператора.
type HandlersTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockOrderService  *mocks.MockOrderServicer
	mockWalletService *mocks.MockWalletServicer
	mockAdminService  *mocks.MockAdminServicer
	jwtSecret         []byte
	paymentSecret     []byte
	userID            int64
	userToken         string
	adminToken        string
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *HandlersTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())

	s.mockOrderService = mocks.NewMockOrderServicer(ctrl)
	s.mockWalletService = mocks.NewMockWalletServicer(ctrl)
	s.mockAdminService = mocks.NewMockAdminServicer(ctrl)
	s.jwtSecret = []byte("super secret key")
	s.paymentSecret = []byte("payment secret")
	s.userID = 1

	var err error
	s.userToken, err = tokens.GenerateUserJWT(s.userID, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	s.adminToken, err = tokens.GenerateAdminJWT(99, time.Hour, s.jwtSecret)
	s.Require().NoError(err)

	s.router, err = New(RouterArgs{
		Logger:        logger.New(io.Discard),
		OrderService:  s.mockOrderService,
		WalletService: s.mockWalletService,
		AdminService:  s.mockAdminService,
		JWTSecretKey:  s.jwtSecret,
		PaymentSecret: s.paymentSecret,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	})
	s.Require().NoError(err)
}

func (s *HandlersTestSuite) do(method, url string, body any, opts ...func(*testutils.RequestOptions)) *http.Response {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}
	if body != nil {
		reader, err := testutils.JSONBody(body)
		s.Require().NoError(err)
		args.Body = reader
		opts = append(opts, testutils.WithJSON())
	}
	return testutils.MakeRequest(args, opts...)
}

func (s *HandlersTestSuite) asUser() func(*testutils.RequestOptions) {
	return testutils.WithBearer(s.userToken)
}

func (s *HandlersTestSuite) asAdmin() func(*testutils.RequestOptions) {
	return testutils.WithBearer(s.adminToken)
}

func (s *HandlersTestSuite) readBody(res *http.Response) string {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	return string(body)
}

func (s *HandlersTestSuite) TestStatusAndMetrics() {
	res := s.do(http.MethodGet, RouteGroup+StatusRoute, nil)
	s.Equal(http.StatusOK, res.StatusCode)
	s.JSONEq(`{"status":"ok"}`, s.readBody(res))

	res = s.do(http.MethodGet, MetricsRoute, nil)
	s.Equal(http.StatusOK, res.StatusCode)
	s.Equal("metrics", s.readBody(res))
}

func (s *HandlersTestSuite) TestAuthRequired() {
	routes := []struct{ method, url string }{
		{http.MethodGet, RouteGroup + BundlesRoute},
		{http.MethodGet, RouteGroup + OrdersRoute},
		{http.MethodPost, RouteGroup + "/user/orders/1/cancel"},
		{http.MethodGet, RouteGroup + BalanceRoute},
		{http.MethodGet, RouteGroup + AdminStatsRoute},
	}
	for _, r := range routes {
		s.Run(r.method+" "+r.url, func() {
			res := s.do(r.method, r.url, nil)
			s.Equal(http.StatusUnauthorized, res.StatusCode)
			s.readBody(res)

			res = s.do(r.method, r.url, nil, testutils.WithBearer("broken"))
			s.Equal(http.StatusUnauthorized, res.StatusCode)
			s.readBody(res)
		})
	}
}

func (s *HandlersTestSuite) TestAdminRequired() {
	res := s.do(http.MethodPost, RouteGroup+"/admin/orders/1/forward", nil, s.asUser())
	s.Equal(http.StatusForbidden, res.StatusCode)
	s.True(strings.Contains(s.readBody(res), "forbidden"))
}

func decodeResponse(res *http.Response, v any) error {
	return testutils.DecodeJSON(res, v) //nolint:wrapcheck
}
