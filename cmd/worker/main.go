package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine/repo"
	"github.com/joripage/matching-engine/pkg/engine/worker"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/tradestream"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.ServiceName+"-worker", cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.EngineDB)
	sqlRepo := repo.NewRepo(db)

	consumer := tradestream.NewConsumer(tradestream.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TradeTopic,
		GroupID: cfg.Kafka.GroupID,
	}, logger)
	defer consumer.Close() // nolint

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(sqlRepo, logger)
	if err := w.Run(ctx, consumer); err != nil && err != context.Canceled {
		logger.Error("worker stopped", zap.Error(err))
	}
}
