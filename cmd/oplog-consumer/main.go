package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-portfolio/internal/config"
	"go-portfolio/internal/consumer/oplog"
	"go-portfolio/internal/logging"
	"go-portfolio/internal/repository/dao"
	"go-portfolio/internal/repository/database"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// oplog-consumer 把 API 发送的操作日志落到 operation_logs 表
func main() {
	// 本地开发可用 .env 提供 CONFIG_PATH / PORTFOLIO_*，已存在的环境变量不会被覆盖
	_ = godotenv.Load(".env")
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka.brokers is empty, nothing to consume")
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(database.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN, MaxOpen: cfg.Database.MaxOpen, MaxIdle: cfg.Database.MaxIdle})
	if err != nil {
		logger.Fatal("db_open_failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := database.EnsureOpLogSchema(ctx, db); err != nil {
		logger.Fatal("oplog_schema_failed", zap.Error(err))
	}

	c := oplog.NewConsumer(oplog.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.OpLogTopic, GroupID: cfg.Kafka.GroupID}, dao.NewOperationLogDAO(db), logger)
	defer func() { _ = c.Close() }()

	logger.Info("oplog_consumer_start", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OpLogTopic), zap.String("group", cfg.Kafka.GroupID))
	if err := c.Run(ctx); err != nil {
		logger.Error("oplog_consumer_stopped", zap.Error(err))
		return
	}
	logger.Info("oplog_consumer_done")
}
