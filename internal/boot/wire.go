package boot

import (
	"context"
	"time"

	"go-portfolio/internal/config"
	"go-portfolio/internal/pkg/cache"
	"go-portfolio/internal/repository/dao"
	redisrepo "go-portfolio/internal/repository/redis"
	httpSrv "go-portfolio/internal/server/http"
	handlerset "go-portfolio/internal/server/http/handler"
	apih "go-portfolio/internal/server/http/handler/api"
	"go-portfolio/internal/service"
	"go-portfolio/internal/storage"

	"github.com/google/wire"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// ProvideLayeredCache 单实例用本地内存；配置了 redis 时只用 redis，各实例共享同一份列表与代际
func ProvideLayeredCache(r *redisrepo.Client) *cache.LayeredCache {
	if r == nil {
		return cache.NewTiered(nil)
	}
	return cache.NewTiered(cache.NewRedisAdapter(r))
}

func ProvideListTTL(c *config.Config) service.ListTTL {
	return service.ListTTL(time.Duration(c.Cache.ListTTLSeconds) * time.Second)
}

// NewImageStore 按 upload.backend 选择本地目录或 MinIO
func NewImageStore(c *config.Config) (storage.ImageStore, error) {
	if c.Upload.Backend == "minio" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint: c.Minio.Endpoint, AccessKey: c.Minio.AccessKey, SecretKey: c.Minio.SecretKey,
			Bucket: c.Minio.Bucket, UseSSL: c.Minio.UseSSL,
		})
	}
	return storage.NewLocal(c.Upload.Dir)
}

func ProvideImageService(c *config.Config, s storage.ImageStore) *service.ImageService {
	return service.NewImageService(s, service.ImagePolicy{
		AllowedExt: c.Upload.AllowedExt,
		MaxBytes:   int64(c.Upload.MaxSizeMB) << 20,
	})
}

func ProvideHandlerSet(u *service.UserService, p *service.ProjectService, i *service.ImageService) *handlerset.HandlerSet {
	return handlerset.NewHandlerSet(apih.Dependencies{User: u, Project: p, Image: i})
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewDatabase,
	NewRedis,
	NewKafkaProducer,
	NewEtcd,
	NewImageStore,
	ProvideLayeredCache,
	wire.Bind(new(cache.Cache), new(*cache.LayeredCache)),
	ProvideListTTL,
	// DAO
	dao.NewUserDAO,
	dao.NewProjectDAO,
	// Service
	service.NewUserService,
	service.NewProjectService,
	ProvideImageService,
	// HTTP
	ProvideHandlerSet,
	httpSrv.NewHealthChecker,
	httpSrv.NewRouter,
	NewApp,
)
