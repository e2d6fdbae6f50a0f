package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.sabacc/internal/api"
	"sudooom.sabacc/internal/config"
	"sudooom.sabacc/internal/game"
	"sudooom.sabacc/internal/health"
	sabaccNats "sudooom.sabacc/internal/nats"
	"sudooom.sabacc/internal/repository"
	"sudooom.sabacc/internal/store"
	"sudooom.sabacc/internal/task"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	rules, err := cfg.Game.HouseRules()
	if err != nil {
		logger.Error("Invalid house rules", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := sabaccNats.NewClient(cfg.NATS, cfg.App.Name)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "addr", cfg.Redis.Addr())

	// 连接数据库
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	// 回合超时调度器
	scheduler := task.NewScheduler(cfg.Scheduler.WorkerCount, cfg.Scheduler.Tick)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	snapshots := store.NewSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
	results := repository.NewResultRepository(db)

	manager := game.NewManager(game.ManagerConfig{
		EvictTimeout:  cfg.Game.EvictTimeout,
		EvictInterval: cfg.Game.EvictInterval,
		SinkTimeout:   cfg.Game.SinkTimeout,
	}, scheduler,
		sabaccNats.NewEventPublisher(natsClient.Conn()),
		snapshots,
		results,
	)

	// 启动订阅者
	subscriber := sabaccNats.NewActionSubscriber(natsClient.Conn(), manager, sabaccNats.SubscriberConfig{
		WorkerCount: cfg.Subscriber.WorkerCount,
		BufferSize:  cfg.Subscriber.BufferSize,
	})
	if err := subscriber.Start(ctx); err != nil {
		logger.Error("Failed to start subscriber", "error", err)
		os.Exit(1)
	}

	healthChecker := health.NewChecker(natsClient.Conn(), redisClient, db, manager)
	handler := api.NewHandler(manager, snapshots, results, rules)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.SetupRouter(gin.ReleaseMode, handler, healthChecker),
	}
	go serve(server, "API server", logger)

	healthServer := &http.Server{
		Addr:    cfg.HTTP.HealthAddr,
		Handler: healthRouter(healthChecker),
	}
	go serve(healthServer, "Health check server", logger)

	logger.Info("Sabacc engine started", "name", cfg.App.Name, "addr", cfg.HTTP.Addr)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", "error", err)
	}
	_ = healthServer.Shutdown(shutdownCtx)
	_ = subscriber.Stop()
	cancel()
	scheduler.Stop()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Session manager shutdown failed", "error", err)
	}
	logger.Info("Sabacc engine stopped")
}

func serve(server *http.Server, name string, logger *slog.Logger) {
	logger.Info(name+" started", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(name+" failed", "error", err)
	}
}

// healthRouter 独立端口上的健康检查
func healthRouter(checker *health.Checker) *gin.Engine {
	r := gin.New()
	r.GET("/health", checker.Health)
	r.GET("/ready", checker.Ready)
	return r
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}
