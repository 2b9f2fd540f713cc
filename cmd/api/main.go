package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/ordernumber"
	"storefront/internal/outbox"
	addressrepo "storefront/internal/repository/address"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		lg.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	productRepo := productrepo.NewPostgres(dbpool, lg)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, lg)
	addressRepo := addressrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool, lg)
	orderRepo := orderrepo.NewPostgres(dbpool, lg)

	catalogService := catalogsvc.New(categoryRepo, productRepo)
	cartService := cartsvc.New(cartRepo, productRepo)
	customerService := customersvc.New(customerRepo, addressRepo, tokenRepo)
	anonymousService := anonymoussvc.New(tokenRepo)
	checkoutService := checkoutsvc.New(cartRepo, addressRepo, orderRepo, ordernumber.New(), lg, m)
	orderService := ordersvc.New(orderRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, lg, dbpool, httpserver.Deps{
		CustomerSvc:  customerService,
		AnonymousSvc: anonymousService,
		CatalogSvc:   catalogService,
		CartSvc:      cartService,
		CheckoutSvc:  checkoutService,
		OrderSvc:     orderService,
		Metrics:      m,
		CORSOrigins:  cfg.CORS.Origins,
	})
	if err != nil {
		lg.Fatal("init server", zap.Error(err))
	}

	relayDone := make(chan struct{})
	if len(cfg.Kafka.Brokers) > 0 {
		writer := outbox.NewWriter(cfg.Kafka.Brokers)
		relay := outbox.NewRelay(outbox.NewStore(dbpool), writer, cfg.Kafka.OrderTopic, cfg.Outbox.BatchSize, lg)
		go func() {
			defer close(relayDone)
			defer func() { _ = writer.Close() }()
			if err := relay.Run(ctx, cfg.Outbox.Interval); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("outbox relay stopped", zap.Error(err))
			}
		}()
	} else {
		lg.Info("kafka brokers not configured, outbox relay disabled")
		close(relayDone)
	}

	go sweepTokens(ctx, tokenRepo, lg)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		lg.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		lg.Error("server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	} else {
		lg.Info("server stopped")
	}
	cancel()
	<-relayDone
}

// sweepTokens deletes expired tokens once an hour.
func sweepTokens(ctx context.Context, tokens tokenrepo.Repository, lg *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				lg.Warn("sweep expired tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				lg.Info("expired tokens removed", zap.Int64("count", n))
			}
		}
	}
}
