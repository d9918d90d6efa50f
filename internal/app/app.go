package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/fos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/fos/internal/health"
	"github.com/vladislavdragonenkov/fos/internal/httpapi"
	"github.com/vladislavdragonenkov/fos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fos/internal/metrics"
	grpcsvc "github.com/vladislavdragonenkov/fos/internal/service/grpc"
	"github.com/vladislavdragonenkov/fos/internal/service/ordering"
	"github.com/vladislavdragonenkov/fos/internal/service/outbox"
	"github.com/vladislavdragonenkov/fos/internal/version"
	fosv1 "github.com/vladislavdragonenkov/fos/proto/fos/v1"
)

// Run поднимает сервис заказов и блокируется до отмены ctx или падения gRPC-сервера.
// При остановке по ctx возвращает ctx.Err().
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app").WithFields(version.Fields())
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	if deps.closeFn != nil {
		defer func() {
			if err := deps.closeFn(); err != nil {
				logger.WithError(err).Warn("failed to close storage")
			}
		}()
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)

	redisClient, err := initRedis(ctx, cfg, logger.WithField("layer", "redis"))
	if err != nil {
		logger.WithError(err).Warn("redis is unavailable, using in-memory carts without report cache")
	}
	if redisClient != nil {
		defer closeRedis(redisClient, logger)
		healthHandler.RegisterChecker("redis", healthcheck.NewOptionalChecker("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}

	kafkaProducer, _ := initKafkaProducerWithClientID(cfg.KafkaBrokers, cfg.KafkaClientID, logger.WithField("layer", "kafka"))
	defer closeKafkaProducer(kafkaProducer, logger)

	payments, err := buildPaymentRouter(ctx, cfg, logger.WithField("layer", "payment"))
	if err != nil {
		return err
	}

	svcDeps := ordering.Dependencies{
		Orders:   deps.repo,
		Timeline: deps.timelineRepo,
		Outbox:   deps.outboxRepo,
		Payments: payments,
		Stock:    stockAdjuster(cfg, deps, logger),
		Vendors:  deps.productRepo,
		Cache:    seriesCache(redisClient, cfg),
		Metrics:  metrics.NewOrderMetrics(),
		Logger:   logger.WithField("layer", "ordering"),
	}
	if kafkaProducer != nil {
		svcDeps.Events = kafkaProducer
	}
	orders, err := ordering.NewService(svcDeps)
	if err != nil {
		return fmt.Errorf("init ordering service: %w", err)
	}

	outboxCancel, outboxDone := startOutboxWorker(ctx, cfg, deps.outboxRepo, kafkaProducer, orders, logger)
	defer shutdownOutboxWorker(outboxCancel, outboxDone, logger)

	orderService := grpcsvc.NewOrderService(orders, logger.WithField("layer", "grpc"))
	grpcServer, healthServer := newGRPCServer(orderService, logger)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Reports: orders,
		Carts:   cartStore(redisClient, cfg),
		Placer:  orders,
		Health:  healthHandler,
		Metrics: promhttp.Handler(),
		Logger:  logger.WithField("layer", "http"),
	})
	httpSrv := startHTTPServer(ctx, cfg.HTTPAddr, logger, router)
	defer shutdownHTTP(httpSrv, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", cfg.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем сервис")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		shutdownOrderService(orderService, shutdownTimeout, logger)
		stopGRPC(grpcServer, shutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

func newGRPCServer(orderService *grpcsvc.OrderService, logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	fosv1.RegisterOrderServiceServer(server, orderService)
	grpcMetrics.InitializeMetrics(server)
	reflection.Register(server)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(fosv1.OrderService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server, healthServer
}

// startOutboxWorker запускает воркер outbox в своей горутине.
// Успешная публикация события заказа сбрасывает кэш графиков.
func startOutboxWorker(
	ctx context.Context,
	cfg Config,
	repo domain.OutboxRepository,
	producer *kafka.Producer,
	orders *ordering.Service,
	logger *log.Entry,
) (context.CancelFunc, <-chan struct{}) {
	workerLogger := logger.WithField("layer", "outbox")
	publisher, dlq := outboxPublishers(producer, workerLogger)

	opts := []outbox.Option{
		outbox.WithLogger(workerLogger),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		outbox.WithMetrics(metrics.NewOutboxMetrics(nil)),
		outbox.WithAfterPublish(func(domain.OutboxMessage) {
			invalidateCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := orders.InvalidateReports(invalidateCtx); err != nil {
				workerLogger.WithError(err).Debug("report cache invalidation failed")
			}
		}),
	}
	if dlq != nil {
		opts = append(opts, outbox.WithDLQPublisher(dlq))
	}
	worker := outbox.NewWorker(repo, publisher, opts...)

	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(workerCtx)
	}()
	return cancel, done
}

// shutdownOrderService ждёт завершения изменяющих запросов.
func shutdownOrderService(svc *grpcsvc.OrderService, timeout time.Duration, logger *log.Entry) {
	if svc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := svc.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("in-flight order requests did not finish in time")
	}
}

func stopGRPC(server *grpc.Server, timeout time.Duration, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

// shutdownOutboxWorker отменяет воркер и ждёт выхода из текущего цикла.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Debug("outbox worker stopped")
	case <-time.After(httpShutdownTimeout):
		logger.Warn("outbox worker did not stop in time")
	}
}

func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	closeKafka(producer, logger)
}

func closeRedis(client *redis.Client, logger *log.Entry) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.WithError(err).Warn("failed to close redis client")
	}
}
