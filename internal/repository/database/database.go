package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver  string // sqlite | postgres
	DSN     string
	MaxOpen int
	MaxIdle int
}

func New(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	// MaxIdle=0 时每次用完即关闭连接
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}

// 建表语句按方言区分；AUTOINCREMENT / BIGSERIAL 保证 id 删除后不复用
var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			age INTEGER NOT NULL,
			designation TEXT,
			experience TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			description TEXT
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			age INTEGER NOT NULL,
			designation TEXT,
			experience TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			description TEXT
		)`,
	},
}

// 操作日志表，仅 oplog consumer 使用
var oplogSchemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS operation_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action_name TEXT NOT NULL,
			path TEXT NOT NULL,
			target TEXT,
			method TEXT NOT NULL,
			status INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			ip TEXT,
			trace_id TEXT,
			errors TEXT,
			add_time INTEGER NOT NULL
		)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS operation_logs (
			id BIGSERIAL PRIMARY KEY,
			action_name TEXT NOT NULL,
			path TEXT NOT NULL,
			target TEXT,
			method TEXT NOT NULL,
			status INTEGER NOT NULL,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			ip TEXT,
			trace_id TEXT,
			errors TEXT,
			add_time BIGINT NOT NULL
		)`,
	},
}

// EnsureSchema 幂等建表，每次启动调用
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	return execSchema(ctx, db, schemas)
}

func EnsureOpLogSchema(ctx context.Context, db *gorm.DB) error {
	return execSchema(ctx, db, oplogSchemas)
}

func execSchema(ctx context.Context, db *gorm.DB, set map[string][]string) error {
	name := db.Dialector.Name()
	stmts, ok := set[name]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", name)
	}
	for _, s := range stmts {
		if err := db.WithContext(ctx).Exec(s).Error; err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Ping 供 readiness 检查使用
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
