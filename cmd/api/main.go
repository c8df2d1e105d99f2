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

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-crm-graphql/internal/config"
	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	"github.com/ariefcatur/go-crm-graphql/internal/graph"
	"github.com/ariefcatur/go-crm-graphql/internal/httpx"
	kafkax "github.com/ariefcatur/go-crm-graphql/internal/kafka"
	"github.com/ariefcatur/go-crm-graphql/internal/postgres"
	"github.com/ariefcatur/go-crm-graphql/internal/redisx"
	"github.com/ariefcatur/go-crm-graphql/internal/seed"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes and the log flush always happen.
func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	app := &cli.App{
		Name:   "crm-api",
		Usage:  "GraphQL API over customers, products and orders",
		Action: func(c *cli.Context) error { return serve(c.Context, cfg, log) },
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: func(c *cli.Context) error { return serve(c.Context, cfg, log) },
			},
			{
				Name:      "migrate",
				Usage:     "apply or revert schema migrations",
				ArgsUsage: "[up|down]",
				Action: func(c *cli.Context) error {
					switch dir := c.Args().First(); dir {
					case "", "up":
						return postgres.MigrateUp(cfg.PostgresDSN)
					case "down":
						return postgres.MigrateDown(cfg.PostgresDSN)
					default:
						return fmt.Errorf("unknown migrate direction %q", dir)
					}
				},
			},
			{
				Name:  "seed",
				Usage: "load sample customers, products and orders",
				Action: func(c *cli.Context) error {
					db, err := postgres.Connect(c.Context, cfg.PostgresDSN, cfg.PostgresMaxConns)
					if err != nil {
						return fmt.Errorf("db connect: %w", err)
					}
					defer db.Close()

					s := &seed.Seeder{Svc: &crm.Service{Store: &crm.Repo{DB: db}, Log: log}, Log: log}
					sum, err := s.Run(c.Context)
					if err != nil {
						return err
					}
					log.Info("seed complete", zap.Int("customers", sum.Customers), zap.Int("products", sum.Products), zap.Int("orders", sum.Orders))
					return nil
				},
			},
		},
	}

	if err := app.Run(args); err != nil {
		log.Error("exit", zap.Error(err))
		return err
	}
	return nil
}

func serve(parent context.Context, cfg config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if cfg.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.PostgresDSN); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	svc := &crm.Service{Store: &crm.Repo{DB: db}, Log: log}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Cache = &redisx.EntityCache{Redis: rdb, Log: log}
	}

	// Kafka producer
	var prod *kafkax.Producer
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		prod = kafkax.NewProducer(brokers, 1024, log)
		prod.Start(ctx)
		svc.Events = &crm.KafkaEmitter{Producer: prod, Service: cfg.ServiceName}
	}

	schema, err := graph.NewSchema(svc)
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}
	router := httpx.NewRouter(log, cfg.RequestTimeout)
	(&httpx.GraphQLHandler{Schema: schema}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
	return nil
}
