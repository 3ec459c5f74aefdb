package storage

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore 以对象存储保存上传文件，对象 key 即文件名
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinio 连接并确保 bucket 存在
func NewMinio(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioStore{client: mc, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Backend() string { return "minio" }

func (s *MinioStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if !validName(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	if contentType == "" {
		contentType = contentTypeOf(name)
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinioStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MinioStore) Open(ctx context.Context, name string) (*Object, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	info, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	ct := info.ContentType
	if ct == "" {
		ct = contentTypeOf(name)
	}
	return &Object{Body: obj, Size: info.Size, ContentType: ct}, nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}
