package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/altilar-labs/microlob/config"
	"github.com/altilar-labs/microlob/pkg/core"
	"github.com/altilar-labs/microlob/pkg/gateway/adapter"
	gatewaygrpc "github.com/altilar-labs/microlob/pkg/gateway/grpc"
	"github.com/altilar-labs/microlob/pkg/latency"
	"github.com/altilar-labs/microlob/pkg/logging"
	"github.com/altilar-labs/microlob/pkg/marketdata"
	"github.com/altilar-labs/microlob/pkg/otel"
	"github.com/altilar-labs/microlob/pkg/wire"
)

func main() {
	configPath := flag.String("config", "", "optional YAML override file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
		Output: os.Stdout,
	})
	logger := logging.FromContext(context.Background())

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      cfg.OTel.ServiceName,
		Endpoint:         cfg.OTel.CollectorEndpoint,
		CollectorEnabled: cfg.OTel.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init otel")
	}
	defer cleanup()

	if err := otel.StartRuntimeMetrics(); err != nil {
		logger.Warn().Err(err).Msg("start runtime metrics")
	}

	engine, err := core.NewMatchingEngine(cfg.Engine.PoolCapacity, monotonicClock)
	if err != nil {
		logger.Fatal().Err(err).Msg("construct matching engine")
	}

	recorder := latency.NewRecorder(int64(time.Second), 3)
	base := adapter.New(engine, cfg.Engine.Symbol, recorder)

	var dispatcher gatewaygrpc.Dispatcher = base
	var fillPublisher *marketdata.FillPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		fillPublisher, err = marketdata.NewFillPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("kafka fill publisher unavailable, continuing without it")
		} else {
			defer fillPublisher.Close()
		}
	}

	var bookPublisher *marketdata.BookPublisher
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		bookPublisher = marketdata.NewBookPublisher(redisClient, "microlob", tickSizeAsDecimal(cfg.Engine.TickSize), logger)
		defer bookPublisher.Close()
		go publishBookPeriodically(context.Background(), bookPublisher, engine, cfg.Engine.Symbol, logger)
	}

	if fillPublisher != nil {
		dispatcher = withFillPublishing(base, fillPublisher, logger)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("listen")
	}

	grpcServer := grpclib.NewServer(
		grpclib.ForceServerCodec(gatewaygrpc.Codec()),
		grpclib.UnaryInterceptor(logging.UnaryServerInterceptor()),
		grpclib.StreamInterceptor(logging.StreamServerInterceptor()),
		grpclib.StatsHandler(otel.NewGRPCStatsHandler()),
	)
	gatewaygrpc.Register(grpcServer, dispatcher)
	reflection.Register(grpcServer)

	go func() {
		logger.Info().Str("addr", cfg.Server.GRPCAddr).Msg("starting gRPC gateway")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("serve grpc")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	grpcServer.GracefulStop()
	snap := recorder.Snapshot()
	logger.Info().
		Int64("dispatch_count", snap.Count).
		Dur("p99", snap.P99).
		Msg("final dispatch latency snapshot")
}

func monotonicClock() int64 { return time.Now().UnixNano() }

func tickSizeAsDecimal(tickSize int64) float64 {
	if tickSize <= 0 {
		return 1
	}
	return 1.0 / float64(tickSize)
}

func publishBookPeriodically(ctx context.Context, pub *marketdata.BookPublisher, engine *core.MatchingEngine, symbol uint32, logger zerolog.Logger) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if err := pub.Publish(ctx, symbol, engine); err != nil {
			logger.Warn().Err(err).Msg("publish book snapshot")
		}
	}
}

// fillPublishingDispatcher decorates a gatewaygrpc.Dispatcher to ship
// every Fill event to Kafka asynchronously, off the response path so a
// slow broker never adds latency to the gRPC reply.
type fillPublishingDispatcher struct {
	inner     gatewaygrpc.Dispatcher
	publisher *marketdata.FillPublisher
	logger    zerolog.Logger
}

func withFillPublishing(inner gatewaygrpc.Dispatcher, publisher *marketdata.FillPublisher, logger zerolog.Logger) gatewaygrpc.Dispatcher {
	return &fillPublishingDispatcher{inner: inner, publisher: publisher, logger: logger}
}

func (d *fillPublishingDispatcher) Dispatch(ctx context.Context, cmd wire.Command) []wire.Event {
	events := d.inner.Dispatch(ctx, cmd)
	for _, ev := range events {
		if ev.Kind != wire.EvtFill {
			continue
		}
		go func(ev wire.Event) {
			if err := d.publisher.PublishFill(context.Background(), ev); err != nil {
				d.logger.Warn().Err(err).Msg("publish fill")
			}
		}(ev)
	}
	return events
}
