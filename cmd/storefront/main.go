package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/boywithalo/marketplacen2/internal/cart"
	"github.com/boywithalo/marketplacen2/internal/catalog"
	"github.com/boywithalo/marketplacen2/internal/checkout"
	"github.com/boywithalo/marketplacen2/internal/config"
	"github.com/boywithalo/marketplacen2/internal/db"
	"github.com/boywithalo/marketplacen2/internal/events"
	httpserver "github.com/boywithalo/marketplacen2/internal/http"
	"github.com/boywithalo/marketplacen2/internal/metrics"
	"github.com/boywithalo/marketplacen2/internal/order"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	database, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.OpenPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("open catalog pool: %v", err)
	}
	defer pool.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewPostgresRepository(pool)
	orderRepo := order.NewRepository(database)
	snapshots := cart.NewPostgresSnapshotStore(database)
	carts := cart.NewManager(snapshots, logger)

	var publisher checkout.Publisher
	var closePublisher func() error
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("dial rabbitmq: %v", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("create publisher: %v", err)
		}
		publisher = pub
		closePublisher = pub.Close
	}

	pipeline := checkout.NewPipeline(orderRepo, catalogRepo, checkout.Options{
		TaxRate:   &cfg.TaxRate,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	})

	router := httpserver.NewRouter(
		httpserver.NewCartHandler(carts, pipeline),
		httpserver.NewCatalogHandler(catalogRepo),
		httpserver.NewOrderHandler(orderRepo),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			logger.Printf("publisher close error: %v", err)
		}
	}
}
