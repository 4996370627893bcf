package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	assetv1 "github.com/exchangelabs/trading-core/internal/domain/asset/v1"
	"github.com/exchangelabs/trading-core/internal/app/engine"
	"github.com/exchangelabs/trading-core/internal/usecase/assets"
	"github.com/exchangelabs/trading-core/internal/usecase/clearing"
	commandreader "github.com/exchangelabs/trading-core/internal/usecase/command-reader"
	eventpublisher "github.com/exchangelabs/trading-core/internal/usecase/event-publisher"
	"github.com/exchangelabs/trading-core/internal/usecase/matching"
	"github.com/exchangelabs/trading-core/internal/usecase/registry"
	"github.com/exchangelabs/trading-core/internal/usecase/snapshot"
	"github.com/exchangelabs/trading-core/pkg/config"
	"github.com/exchangelabs/trading-core/pkg/logger"
	"github.com/exchangelabs/trading-core/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)),
		logger.WithMarket(cfg.Market.Pair),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(log, &cfg.Redis)
	if err := redisClient.Connect(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer redisClient.Disconnect(ctx)

	baseAsset := assetv1.Asset(cfg.Market.BaseAsset)
	quoteAsset := assetv1.Asset(cfg.Market.QuoteAsset)

	ledger := assets.NewLedger(log)
	orderRegistry := registry.NewOrderRegistry(ledger, baseAsset, quoteAsset, log)
	matcher := matching.NewMatchEngine()
	clearer := clearing.NewClearingEngine(ledger, orderRegistry, baseAsset, quoteAsset, log)

	reader := commandreader.NewReader(cfg.CommandKafka, log)
	defer reader.Close()
	publisher := eventpublisher.NewPublisher(cfg.EventKafka, log)
	defer publisher.Close()
	snapshotStore := snapshot.NewSnapshotStore(redisClient, cfg.Market.Pair, log)

	opts := &engine.Options{
		SnapshotInterval:    cfg.Engine.SnapshotInterval,
		SnapshotSequenceGap: cfg.Engine.SnapshotSequenceGap,
		EventBufferSize:     cfg.Engine.EventBufferSize,
	}
	eng := engine.NewEngine(ledger, orderRegistry, matcher, clearer,
		reader, snapshotStore, publisher, log, cfg, opts)

	log.Info("trading engine starting",
		logger.Field{Key: "pair", Value: cfg.Market.Pair},
		logger.Field{Key: "commandTopic", Value: cfg.CommandKafka.Topic},
		logger.Field{Key: "eventTopic", Value: cfg.EventKafka.Topic},
	)

	if err := eng.Run(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
