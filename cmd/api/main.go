package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-portfolio/internal/boot"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 本地开发可用 .env 提供 CONFIG_PATH / PORTFOLIO_*，已存在的环境变量不会被覆盖
	_ = godotenv.Load(".env")
	// 支持通过环境变量 CONFIG_PATH 指定配置文件；文件不存在时使用默认值 + PORTFOLIO_* 环境变量
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}
	if _, err := os.Stat(cfgPath); err != nil {
		log.Printf("config %s not found, using defaults", cfgPath)
	}

	app, err := boot.InitApp(cfgPath)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	srv := &http.Server{Addr: app.Config.HTTP.Addr, Handler: app.HTTP, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		app.Logger.Info("http_server_start",
			zap.String("addr", app.Config.HTTP.Addr),
			zap.String("config", cfgPath),
			zap.String("db_driver", app.Config.Database.Driver),
			zap.String("upload_backend", app.Store.Backend()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("http_server_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	app.Logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Warn("http_shutdown_error", zap.Error(err))
	}
	app.Close()
	log.Println("cleanup_done")
}
