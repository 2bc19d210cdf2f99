package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine"
	"github.com/joripage/matching-engine/pkg/engine/market"
	"github.com/joripage/matching-engine/pkg/engine/riskrule"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
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

	logger, err := logging.Init(cfg.ServiceName, cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	rdb, err := redis_wrapper.InitRedis(cfg.Redis)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	instruments := market.NewRedisStore(rdb)

	riskGate := riskrule.NewGate(instruments,
		riskrule.TickSizeRule{},
		riskrule.LotSizeRule{},
		riskrule.NewPriceBandRule(),
	)

	tradeSink := tradestream.NewProducer(tradestream.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TradeTopic,
	}, logger)
	defer tradeSink.Close() // nolint

	eng := engine.New(engine.Config{
		GateTimeout: time.Duration(cfg.Engine.GateTimeoutMs) * time.Millisecond,
	}, riskGate, instruments, tradeSink, nil, logger)

	dispatcher := engine.NewDispatcher(eng, cfg.Engine.NumShards, cfg.Engine.QueueSize)
	dispatcher.Start()

	logger.Info("matching engine started")

	// submissions arrive through the dispatcher from a transport layer
	// wired by the embedding service; run until signalled
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")
}
