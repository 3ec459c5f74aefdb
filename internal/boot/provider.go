package boot

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"go-portfolio/internal/config"
	"go-portfolio/internal/discovery/etcd"
	"go-portfolio/internal/logging"
	"go-portfolio/internal/metrics"
	"go-portfolio/internal/mq/kafka"
	"go-portfolio/internal/repository/database"
	redisrepo "go-portfolio/internal/repository/redis"
	"go-portfolio/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	go_otel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

const redisHeartbeatInterval = 10 * time.Second

type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *gorm.DB
	Redis  *redisrepo.Client
	Kafka  *kafka.Producer
	Etcd   *etcd.Client
	Store  storage.ImageStore
	HTTP   *gin.Engine

	regMu      sync.Mutex
	serviceKey string
	leaseID    clientv3.LeaseID
	tracerProv *trace.TracerProvider
	stopCh     chan struct{}
}

// Provider constructors for wire
func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(c.Log.Level, c.Log.Format)
}

// NewDatabase 打开连接并建表；任一步失败都视为启动失败
func NewDatabase(c *config.Config, l *logging.Logger) (*gorm.DB, error) {
	db, err := database.New(database.Config{Driver: c.Database.Driver, DSN: c.Database.DSN, MaxOpen: c.Database.MaxOpen, MaxIdle: c.Database.MaxIdle})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Database.Driver, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	l.Info("database_ready", zap.String("driver", c.Database.Driver))
	return db, nil
}

func NewRedis(c *config.Config) *redisrepo.Client {
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB})
}

func NewKafkaProducer(c *config.Config) *kafka.Producer {
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.OpLogTopic})
}

func NewEtcd(c *config.Config) (*etcd.Client, error) {
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

func NewApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client, s storage.ImageStore, engine *gin.Engine) *App {
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Etcd: e, Store: s, HTTP: engine, stopCh: make(chan struct{})}
	l.Info("image_store_ready", zap.String("backend", s.Backend()))
	// OpenTelemetry 初始化（可选），需在 redis / gorm 埋点之前
	if c.OTel.Enable {
		app.initTracing()
	}
	if r != nil {
		app.startRedisHeartbeat()
	}
	if e != nil {
		go app.registerEtcd()
	}
	return app
}

// exporterCredentials otel.insecure=false 时使用系统根证书做 TLS
func exporterCredentials(plaintext bool) credentials.TransportCredentials {
	if plaintext {
		return insecure.NewCredentials()
	}
	return credentials.NewClientTLSFromCert(nil, "")
}

func (a *App) initTracing() {
	c, l := a.Config, a.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(c.OTel.Endpoint),
		otlptracegrpc.WithTLSCredentials(exporterCredentials(c.OTel.Insecure)),
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		l.Error("otel_exporter_init_failed", zap.Error(err))
		return
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
		semconv.DeploymentEnvironmentKey.String(c.AppMeta.Env),
	))
	sampler := trace.ParentBased(trace.TraceIDRatioBased(c.OTel.SamplerRatio))
	a.tracerProv = trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res), trace.WithSampler(sampler))
	go_otel.SetTracerProvider(a.tracerProv)
	go_otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	l.Info("otel_tracer_provider_initialized")
	// ===== GORM instrumentation =====
	if a.DB != nil {
		if err := a.DB.Use(tracing.NewPlugin()); err != nil {
			l.Error("gorm_tracing_plugin_failed", zap.Error(err))
		} else {
			l.Info("gorm_tracing_plugin_enabled")
		}
	}
	// ===== Redis instrumentation =====
	if a.Redis != nil {
		if err := redisotel.InstrumentTracing(a.Redis.Client); err != nil {
			l.Error("redis_tracing_hook_failed", zap.Error(err))
		} else {
			l.Info("redis_otel_tracing_enabled")
		}
	}
}

// startRedisHeartbeat 启动时 ping 一次，之后定期探测并在状态切换时记录日志
func (a *App) startRedisHeartbeat() {
	c, l, r := a.Config, a.Logger, a.Redis
	timeout := time.Duration(c.Redis.PingTimeoutMS) * time.Millisecond
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return r.Ping(ctx)
	}
	lastUp := true
	if err := ping(); err != nil {
		lastUp = false
		metrics.DependencyUp.WithLabelValues("redis").Set(0)
		l.Error("redis_ping_failed", zap.Error(err), zap.String("addr", c.Redis.Addr))
	} else {
		metrics.DependencyUp.WithLabelValues("redis").Set(1)
		l.Info("redis_ping_ok", zap.String("addr", c.Redis.Addr))
	}
	go func() {
		t := time.NewTicker(redisHeartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-t.C:
				err := ping()
				if err != nil {
					metrics.DependencyUp.WithLabelValues("redis").Set(0)
					if lastUp {
						l.Warn("redis_down", zap.Error(err))
					}
				} else {
					metrics.DependencyUp.WithLabelValues("redis").Set(1)
					if !lastUp {
						l.Info("redis_recovered")
					}
				}
				lastUp = err == nil
			}
		}
	}()
}

// registerEtcd 以 ip:port 为 key 注册实例，指数退避重试
func (a *App) registerEtcd() {
	c, l := a.Config, a.Logger
	port := "0"
	if _, p, err := net.SplitHostPort(c.HTTP.Addr); err == nil && p != "" {
		port = p
	}
	ip := firstNonLoopbackIPv4()
	if ip == "" {
		ip = "127.0.0.1"
	}
	serviceKey := fmt.Sprintf("/services/%s/%s/%s/%s:%s", c.AppMeta.Name, c.AppMeta.Env, c.AppMeta.Version, ip, port)
	valBytes, _ := json.Marshal(map[string]interface{}{
		"instance_id":  uuid.NewString(),
		"env":          c.AppMeta.Env,
		"version":      c.AppMeta.Version,
		"ip":           ip,
		"port":         port,
		"addr":         c.HTTP.Addr,
		"startup_unix": time.Now().Unix(),
	})
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		leaseID, err := a.Etcd.Register(ctx, serviceKey, string(valBytes), int64(c.Etcd.TTL))
		cancel()
		if err == nil {
			a.regMu.Lock()
			a.serviceKey, a.leaseID = serviceKey, leaseID
			a.regMu.Unlock()
			metrics.DependencyUp.WithLabelValues("etcd").Set(1)
			l.Info("etcd_registered", zap.String("key", serviceKey))
			return
		}
		if attempt >= maxAttempts {
			l.Error("etcd_register_failed", zap.Error(err), zap.Int("attempt", attempt))
			return
		}
		backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
		l.Warn("etcd_register_retry", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
		select {
		case <-a.stopCh:
			return
		case <-time.After(backoff):
		}
	}
}

func (a *App) Close() {
	// 先停心跳 / 注册重试
	if a.stopCh != nil {
		close(a.stopCh)
	}
	// 优雅下线 etcd
	a.regMu.Lock()
	key, lease := a.serviceKey, a.leaseID
	a.regMu.Unlock()
	if a.Etcd != nil && key != "" && lease != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.Etcd.Deregister(ctx, key, lease); err != nil {
			a.Logger.Error("etcd_deregister_failed", zap.Error(err))
		}
		metrics.DependencyUp.WithLabelValues("etcd").Set(0)
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			a.Logger.Error("db_close_error", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	if a.tracerProv != nil {
		if err := a.tracerProv.Shutdown(context.Background()); err != nil {
			a.Logger.Error("otel_tracer_shutdown_error", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// 获取首个非 loopback IPv4
func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return ""
}
