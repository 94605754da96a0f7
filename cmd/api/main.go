package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/catalog"
	"github.com/ariefcatur/restaurant-orders/internal/config"
	"github.com/ariefcatur/restaurant-orders/internal/httpx"
	kafkax "github.com/ariefcatur/restaurant-orders/internal/kafka"
	"github.com/ariefcatur/restaurant-orders/internal/notify"
	"github.com/ariefcatur/restaurant-orders/internal/orders"
	"github.com/ariefcatur/restaurant-orders/internal/postgres"
	"github.com/ariefcatur/restaurant-orders/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start()

	// Services & handlers
	catalogRepo := &catalog.Repo{DB: db}
	ordersSvc := &orders.Service{
		Repo:                 &orders.Repo{DB: db},
		Notifier:             &notify.RedisPublisher{Client: rdb},
		Events:               prod,
		Cache:                &orders.RedisStatusCache{Client: rdb},
		DeliveryTypeID:       cfg.DeliveryTypeID,
		RestoreStockOnCancel: cfg.RestoreStockOnCancel,
		StrictTransitions:    cfg.StrictStatusTransitions,
		ServiceName:          cfg.ServiceName,
	}

	router := httpx.NewRouter(authz.NewTokens(cfg.JWTSecret))
	(&httpx.OrdersHandler{Orders: ordersSvc, Timeout: cfg.OrderTimeout}).Register(router)
	(&httpx.CatalogHandler{Catalog: &catalog.Service{Repo: catalogRepo}, Timeout: cfg.OrderTimeout}).Register(router)
	(&httpx.StreamHandler{Redis: rdb, Branches: catalogRepo}).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
	}

	ordersSvc.Wait()  // post-commit notifications still in flight
	prod.Close()      // stop accepting events
	prod.WaitClosed() // flush queued events
}
