package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/config"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/events"
	kafkax "github.com/ariefcatur/go-ecommerce-catalog/internal/kafka"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/logging"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if !cfg.EventsEnabled() {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dedup events.Deduper
	if cfg.RedisEnabled() {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		dedup = &redisx.Dedup{R: rdb, Service: cfg.AuditGroup}
	}
	auditor := events.NewAuditor(dedup, logger)

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, catalog.Topics, cfg.AuditWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.WithFields(log.Fields{"group": cfg.AuditGroup, "topics": catalog.Topics, "workers": cfg.AuditWorkers}).Info("audit consumer started")
		if err := cons.Start(ctx, auditor.Handle); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	<-done
}
