package main

import (
	"context"
	"database/sql"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/pos-register/internal/adapter/handler"
	"github.com/rl1809/pos-register/internal/adapter/storage"
	"github.com/rl1809/pos-register/internal/config"
	"github.com/rl1809/pos-register/internal/core/service"
	"github.com/rl1809/pos-register/internal/port"
	"github.com/rl1809/pos-register/internal/telemetry"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	var traceOut io.Writer
	if cfg.TraceStdout {
		traceOut = os.Stdout
	}
	shutdownTracing, err := telemetry.SetupTracing(traceOut, version)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}

	// Load catalog
	products, err := storage.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("path", cfg.CatalogFile), zap.Error(err))
	}
	logger.Info("loaded catalog", zap.Int("products", len(products)))

	// Initialize Redis
	var idempotency port.IdempotencyRepository = storage.NewMemoryIdempotency(0)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 20,
		})
		redisAdapter := storage.NewRedisAdapter(rdb)
		if err := redisAdapter.Ping(ctx); err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		idempotency = redisAdapter
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Initialize MySQL
	var journal port.JournalRepository = storage.NopJournal{}
	var db *sql.DB
	queueSize := 0
	if cfg.JournalEnabled() {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			logger.Fatal("failed to connect mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(cfg.WorkerCount * 2)
		db.SetMaxIdleConns(cfg.WorkerCount)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("failed to ping mysql", zap.Error(err))
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate receipt journal", zap.Error(err))
		}
		journal = mysqlAdapter
		queueSize = cfg.QueueSize
		logger.Info("connected to mysql")
	}

	// Initialize service
	register := service.NewRegisterService(service.Repositories{
		Catalog:     storage.NewMemoryCatalog(products),
		Cart:        storage.NewMemoryCart(),
		Ledger:      storage.NewMemoryLedger(),
		Customers:   storage.NewMemoryCustomers(),
		Idempotency: idempotency,
	}, queueSize, service.WithLogger(logger))
	logger.Info("register session started", zap.String("session_id", register.SessionID()))

	// Start journal workers
	var wg sync.WaitGroup
	if queue := register.GetJournalQueue(); queue != nil {
		for i := 0; i < cfg.WorkerCount; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				service.JournalWorker(id, queue, journal, cfg.JournalTimeout, logger)
			}(i)
		}
		logger.Info("started journal workers", zap.Int("workers", cfg.WorkerCount))
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLoggingInterceptor(logger)))
	handler.RegisterRegisterServer(grpcServer, handler.NewGRPCHandler(register))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handler.RegisterServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	router := mux.NewRouter()
	handler.NewHTTPHandler(register, logger).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "pos-register"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Close journal queue and wait for workers
	register.Close()
	wg.Wait()
	logger.Info("journal workers stopped")

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	logger.Info("connections closed")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
