package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Database struct {
		Driver  string `mapstructure:"driver"` // sqlite | postgres
		DSN     string `mapstructure:"dsn"`
		MaxOpen int    `mapstructure:"max_open"`
		MaxIdle int    `mapstructure:"max_idle"`
	} `mapstructure:"database"`
	Upload struct {
		Backend    string   `mapstructure:"backend"` // local | minio
		Dir        string   `mapstructure:"dir"`
		MaxSizeMB  int      `mapstructure:"max_size_mb"`
		AllowedExt []string `mapstructure:"allowed_ext"`
	} `mapstructure:"upload"`
	Minio struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`
	Redis struct {
		Addr          string `mapstructure:"addr"`
		Password      string `mapstructure:"password"`
		DB            int    `mapstructure:"db"`
		PingTimeoutMS int    `mapstructure:"ping_timeout_ms"`
	} `mapstructure:"redis"`
	Cache struct {
		ListTTLSeconds int `mapstructure:"list_ttl_seconds"`
	} `mapstructure:"cache"`
	Kafka struct {
		Brokers    []string `mapstructure:"brokers"`
		OpLogTopic string   `mapstructure:"op_log_topic"`
		GroupID    string   `mapstructure:"group_id"` // oplog consumer
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
	} `mapstructure:"etcd"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"` // OTLP gRPC endpoint
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
}

// EnvPrefix 环境变量前缀，例如 PORTFOLIO_HTTP_ADDR 覆盖 http.addr
const EnvPrefix = "PORTFOLIO"

// Load 读取 YAML 配置；path 为空或文件不存在时只使用默认值 + 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:5000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "users.db?_busy_timeout=5000")
	v.SetDefault("database.max_open", 0)
	v.SetDefault("database.max_idle", 2)
	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size_mb", 16)
	v.SetDefault("upload.allowed_ext", []string{"png", "jpg", "jpeg", "gif"})
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "uploads")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ping_timeout_ms", 300)
	v.SetDefault("cache.list_ttl_seconds", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.op_log_topic", "portfolio.oplog")
	v.SetDefault("kafka.group_id", "portfolio-oplog")
	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("app_meta.name", "portfolio-api")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
}

// ===== 逻辑校验 =====
func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q not supported (sqlite|postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn required")
	}
	switch c.Upload.Backend {
	case "local":
		if c.Upload.Dir == "" {
			return errors.New("upload.dir required for local backend")
		}
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return errors.New("minio.endpoint and minio.bucket required for minio backend")
		}
	default:
		return fmt.Errorf("upload.backend %q not supported (local|minio)", c.Upload.Backend)
	}
	if len(c.Upload.AllowedExt) == 0 {
		return errors.New("upload.allowed_ext must not be empty")
	}
	for i, e := range c.Upload.AllowedExt {
		c.Upload.AllowedExt[i] = strings.ToLower(strings.TrimPrefix(e, "."))
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	if c.Etcd.TTL <= 0 {
		c.Etcd.TTL = 10
	}
	return nil
}
