package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/config"
	"github.com/fsdevblog/groph-bundles/internal/metrics"
	"github.com/fsdevblog/groph-bundles/internal/notify"
	"github.com/fsdevblog/groph-bundles/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/fsdevblog/groph-bundles/internal/transport/api"
	"github.com/fsdevblog/groph-bundles/internal/transport/fulfillment"
	"github.com/fsdevblog/groph-bundles/internal/transport/supplier"
	"github.com/fsdevblog/groph-bundles/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	// lockTTL с запасом перекрывает самую долгую итерацию обработчика.
	lockTTL = 5 * time.Minute
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %s", a.Config)
	conn, connErr := pgrepo.Connect(
		notifyCtx,
		a.Config.MigrationsDir,
		a.Config.DatabaseDSN,
		a.Logger.WithField("component", "postgres"),
	)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	encoder, encErr := supplier.EncoderByName(a.Config.SupplierEncoding)
	if encErr != nil {
		return fmt.Errorf("app run: %s", encErr.Error())
	}
	forwarder := supplier.New(a.Config.SupplierURL, a.Config.SupplierToken, encoder, a.Config.SupplierTimeout)

	services, sErr := service.Factory(unitOfWork, forwarder, notify.NewLogSink(a.Logger), service.Settings{
		CommissionRate:   a.Config.CommissionRate,
		FulfillmentDelay: a.Config.FulfillmentDelay,
		CancelWindow:     a.Config.CancelWindow,
		ForwardingLease:  a.Config.ForwardingLease,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, routerErr := api.New(api.RouterArgs{
		Logger:         a.Logger,
		OrderService:   services.OrderService,
		WalletService:  services.WalletService,
		AdminService:   services.FulfillmentService,
		JWTSecretKey:   []byte(a.Config.JWTSecret),
		PaymentSecret:  []byte(a.Config.PaymentSecret),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	processor := fulfillment.New(services.FulfillmentService, a.Logger).
		SetInterval(a.Config.FulfillmentInterval).
		SetWorkers(a.Config.FulfillmentWorkers).
		SetBatchSize(a.Config.FulfillmentBatch).
		SetMetrics(metrics.NewFulfillmentMetrics(registry))

	if a.Config.RedisAddr != "" {
		redisClient, lock, lockErr := initLock(notifyCtx, a.Config.RedisAddr)
		if lockErr != nil {
			return fmt.Errorf("app run: %s", lockErr.Error())
		}
		defer redisClient.Close()
		processor.SetLock(lock)
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(notifyCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		processor.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx) //nolint:wrapcheck
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

func initLock(ctx context.Context, addr string) (*redis.Client, *fulfillment.RedisLock, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("init lock: ping redis: %w", err)
	}
	lock, err := fulfillment.NewRedisLock(client, fulfillment.DefaultLockKey, lockTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("init lock: %w", err)
	}
	return client, lock, nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn, uow.WithIsolationLevel(pgx.ReadCommitted))

	factories := []struct {
		name    repoargs.RepositoryName
		factory uow.RepositoryFactory
	}{
		{repoargs.WalletRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewWalletRepository(dbtx) }},
		{repoargs.BundleRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewBundleRepository(dbtx) }},
		{repoargs.OrderRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewOrderRepository(dbtx) }},
		{
			repoargs.FulfillmentJobRepoName,
			func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewFulfillmentJobRepository(dbtx) },
		},
	}
	for _, f := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(f.name), f.factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
