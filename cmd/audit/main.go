package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-crm-graphql/internal/audit"
	"github.com/ariefcatur/go-crm-graphql/internal/config"
	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	kafkax "github.com/ariefcatur/go-crm-graphql/internal/kafka"
	"github.com/ariefcatur/go-crm-graphql/internal/redisx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &audit.Service{Log: log, ServiceName: cfg.ServiceName + "-audit"}
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
	}

	cons := kafkax.NewConsumer(brokers, cfg.AuditGroup, crm.Topics, cfg.AuditWorkers, log)
	done := make(chan struct{})
	var consumeErr error
	go func() {
		defer close(done)
		log.Info("audit consumer started",
			zap.String("group", cfg.AuditGroup), zap.Strings("topics", crm.Topics), zap.Int("workers", cfg.AuditWorkers))
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Error("consumer exit", zap.Error(err))
			consumeErr = err
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	<-done
	log.Info("audit totals", zap.Any("events", svc.Counts()))
	return consumeErr
}
