package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgr/arbitrage-bot/internal/config"
	"github.com/orgr/arbitrage-bot/internal/connectors/redisfeed"
	"github.com/orgr/arbitrage-bot/internal/dash"
	"github.com/orgr/arbitrage-bot/internal/metrics"
	"github.com/orgr/arbitrage-bot/internal/scanner"
	"github.com/orgr/arbitrage-bot/internal/sink"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	// Venue kinds register themselves on import.
	_ "github.com/orgr/arbitrage-bot/internal/venue/binance"
	_ "github.com/orgr/arbitrage-bot/internal/venue/mexc"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Warn("received signal, shutting down...")
		cancel()
	}()

	metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, logger)

	sinks := []sink.Sink{&sink.LogSink{Log: logger}}

	if cfg.Dash.ListenAddr != "" {
		store := dash.NewStore()
		go dash.StartHTTP(ctx, store, cfg.Dash.ListenAddr, logger)
		sinks = append(sinks, &sink.DashSink{Store: store})
	}

	if cfg.Redis.Addr != "" {
		pub := redisfeed.NewPublisher(cfg)
		defer pub.Close()
		sinks = append(sinks, &sink.RedisSink{Pub: pub})
	}

	sc := scanner.New(cfg, sink.NewMulti(logger, sinks...), logger)

	logger.Info("scanner starting",
		zap.Int("venues", len(cfg.Venues)),
		zap.String("threshold", cfg.Scan.ThresholdValue.String()),
		zap.Duration("poll_interval", cfg.PollInterval()),
		zap.Duration("fetch_deadline", cfg.FetchDeadline()),
	)

	if err := sc.Run(ctx); err != nil {
		logger.Fatal("scanner failed", zap.Error(err))
	}
}
