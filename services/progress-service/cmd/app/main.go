package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursus/services/progress-service/config"
	"kursus/services/progress-service/internal/application"
	"kursus/services/progress-service/internal/infrastructure/catalog"
	"kursus/services/progress-service/internal/infrastructure/certnumber"
	"kursus/services/progress-service/internal/infrastructure/events"
	"kursus/services/progress-service/internal/infrastructure/metrics"
	"kursus/services/progress-service/internal/infrastructure/repository"
	"kursus/services/progress-service/internal/infrastructure/security"
	"kursus/services/progress-service/internal/infrastructure/tracing"
	"kursus/services/progress-service/internal/platform/logger"
	grpc_server "kursus/services/progress-service/internal/transport/grpc"
	handlers "kursus/services/progress-service/internal/transport/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const serviceName = "progress-service"

type publisher interface {
	application.CertificateEvents
	Close() error
}

func main() {
	// 1. Config
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(serviceName, cfg.TracingEnabled, os.Stdout, appLog)
	if err != nil {
		appLog.Fatal("tracing init failed", "error", err)
	}

	// 2. DB + migrations
	db, err := repository.Open(cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to connect to DB", "driver", cfg.DBDriver, "error", err)
	}
	appLog.Info("running migrations")
	if err := repository.Migrate(db); err != nil {
		appLog.Fatal("failed to migrate DB", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLog.Fatal("failed to get sql.DB", "error", err)
	}

	// 3. Redis is optional: without it the catalog is uncached and verification unthrottled.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			appLog.Fatal("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
	} else {
		appLog.Warn("REDIS_ADDR not set, catalog cache and rate limiting disabled")
	}

	courses, err := catalog.Open(ctx, cfg, db, rdb, appLog)
	if err != nil {
		appLog.Fatal("failed to open catalog", "source", cfg.CatalogSource, "error", err)
	}

	var pub publisher = events.NoopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kp, err := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		if err != nil {
			appLog.Fatal("failed to init kafka publisher", "error", err)
		}
		pub = kp
	}
	defer pub.Close()

	// 4. Layers
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	progress := application.NewProgressService(repository.NewProgressRepository(db), courses, m, appLog)
	certStore := repository.NewCertificateRepository(db)
	certs := application.NewCertificateService(application.CertificateDeps{
		Progress:     progress,
		Certificates: certStore,
		Catalog:      courses,
		Profiles:     repository.NewProfileRepository(db),
		Numbers:      certnumber.NewRandomGenerator(),
		Events:       pub,
		Metrics:      m,
		Log:          appLog,
		FallbackName: cfg.CertFallbackName,
	})
	verifier := application.NewVerifierService(certStore, m, appLog)

	if cfg.AccessSecret == "" {
		appLog.Warn("ACCESS_SECRET is empty, every authenticated request will be rejected")
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		ServiceName:     serviceName,
		AllowedOrigins:  cfg.Origins(),
		VerifyRateLimit: cfg.VerifyRateLimit,
		Health:          sqlDB.PingContext,
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	},
		handlers.NewProgressHandler(progress, appLog),
		handlers.NewCertificateHandler(certs, verifier, appLog),
		security.NewTokenValidator(cfg.AccessSecret),
		handlers.NewRateLimiter(rdb),
		appLog,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	healthServer := grpc_server.NewHealthServer(sqlDB.PingContext, appLog)
	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		appLog.Fatal("failed to listen", "addr", cfg.GRPCPort, "error", err)
	}

	// 5. Run until signalled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLog.Info("HTTP server running", "addr", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		appLog.Info("gRPC health server running", "addr", cfg.GRPCPort)
		return healthServer.Serve(lis)
	})
	g.Go(func() error {
		healthServer.Monitor(gctx, 15*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		healthServer.GracefulStop()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLog.Warn("tracing shutdown failed", "error", err)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLog.Error("server stopped with error", "error", err)
	}
}
