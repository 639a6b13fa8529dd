package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/config"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/httpx"
	kafkax "github.com/ariefcatur/go-ecommerce-catalog/internal/kafka"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/logging"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/memory"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/metrics"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/mongo"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/redisx"
)

type store struct {
	products catalog.ProductRepository
	orders   catalog.OrderRepository
	pinger   catalog.Pinger
	close    func(context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) store {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		m := memory.New()
		return store{products: m, orders: m, pinger: m, close: func(context.Context) error { return nil }}
	}

	c := mongo.NewClient(cfg.MongoURL, config.DatabaseName, cfg.MongoConnectTimeout)
	if _, err := c.EnsureConnected(ctx); err != nil {
		log.WithError(err).Warn("MongoDB not available at startup, will retry on next request")
	}
	return store{
		products: &mongo.ProductRepo{Client: c},
		orders:   &mongo.OrderRepo{Client: c},
		pinger:   c,
		close:    c.Close,
	}
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(log.Fields{"store": cfg.StoreDriver, "mongodb_url": cfg.MongoURL}).Info("starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := openStore(ctx, cfg)

	// Events
	var pub catalog.EventPublisher = catalog.NopPublisher
	var prod *kafkax.Producer
	if cfg.EventsEnabled() {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		pub = prod
	}

	// Idempotency
	var idem httpx.IdempotencyStore
	if cfg.RedisEnabled() {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		idem = &redisx.Idempotency{R: rdb}
	}

	router := httpx.NewRouter(st.pinger, metrics.NewHTTPMetrics())
	(&httpx.ProductsHandler{
		Service: catalog.NewProductService(st.products, pub, cfg.ServiceName),
	}).Register(router)
	(&httpx.OrdersHandler{
		Service:     catalog.NewOrderService(st.orders, st.products, pub, cfg.ServiceName),
		Idempotency: idem,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Infof("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	if err := st.close(ctx2); err != nil {
		log.WithError(err).Warn("close store")
	}
}
