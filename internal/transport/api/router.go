package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup              = "/api"
	StatusRoute             = "/status"
	BundlesRoute            = "/bundles"
	OrdersRoute             = "/user/orders"
	OrderCancelRoute        = "/user/orders/:id/cancel"
	BalanceRoute            = "/user/balance"
	DashboardRoute          = "/user/dashboard"
	CommissionWithdrawRoute = "/user/commission/withdraw"
	PaymentWebhookRoute     = "/payments/webhook"
	AdminOrdersRoute        = "/admin/orders"
	AdminForwardRoute       = "/admin/orders/:id/forward"
	AdminStatsRoute         = "/admin/stats"
	MetricsRoute            = "/metrics"
)

type RouterArgs struct {
	Logger        *logrus.Logger
	OrderService  OrderServicer
	WalletService WalletServicer
	AdminService  AdminServicer
	JWTSecretKey  []byte
	PaymentSecret []byte
	// MetricsHandler если задан, отдается на MetricsRoute.
	MetricsHandler http.Handler
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	if args.MetricsHandler != nil {
		r.GET(MetricsRoute, gin.WrapH(args.MetricsHandler))
	}

	ordersHandler := NewOrdersHandler(args.OrderService)
	walletHandler := NewWalletHandler(args.WalletService)
	adminHandler := NewAdminHandler(args.AdminService)
	webhookHandler := NewWebhookHandler(args.WalletService, args.PaymentSecret)

	api := r.Group(RouteGroup)

	api.GET(StatusRoute, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST(PaymentWebhookRoute, webhookHandler.Payment)

	authorized := api.Group("", middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	authorized.GET(BundlesRoute, ordersHandler.Bundles)
	authorized.POST(OrdersRoute, ordersHandler.Create)
	authorized.GET(OrdersRoute, ordersHandler.Index)
	authorized.POST(OrderCancelRoute, ordersHandler.Cancel)

	authorized.GET(BalanceRoute, walletHandler.Balance)
	authorized.GET(DashboardRoute, walletHandler.Dashboard)
	authorized.POST(CommissionWithdrawRoute, walletHandler.WithdrawCommission)

	admin := authorized.Group("", middlewares.AdminRequired())
	admin.GET(AdminOrdersRoute, adminHandler.Orders)
	admin.POST(AdminForwardRoute, adminHandler.Forward)
	admin.GET(AdminStatsRoute, adminHandler.Stats)
	return r, nil
}
