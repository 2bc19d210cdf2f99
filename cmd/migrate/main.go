package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/infra"
	"github.com/joripage/matching-engine/pkg/logging"
)

func main() {
	var configFile, source string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&source, "source", "file://migrations", "Migration source")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.ServiceName+"-migrate", cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	if err := infra.Migrate(source, cfg.EngineDB.MigrationConnURL); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
}
