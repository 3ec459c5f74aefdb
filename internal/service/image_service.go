package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go-portfolio/internal/metrics"
	"go-portfolio/internal/storage"
	"go-portfolio/internal/util/retcode"
)

// ImagePolicy 上传限制；MaxBytes<=0 表示不限大小
type ImagePolicy struct {
	AllowedExt []string
	MaxBytes   int64
}

type ImageService struct {
	Store   storage.ImageStore
	policy  ImagePolicy
	allowed map[string]struct{}
}

func NewImageService(store storage.ImageStore, p ImagePolicy) *ImageService {
	allowed := make(map[string]struct{}, len(p.AllowedExt))
	for _, e := range p.AllowedExt {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return &ImageService{Store: store, policy: p, allowed: allowed}
}

type UploadParams struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

func (s *ImageService) allowedExt(name string) bool {
	if !strings.Contains(name, ".") {
		return false
	}
	_, ok := s.allowed[storage.Ext(name)]
	return ok
}

// Upload 校验扩展名、清洗文件名后写入存储，返回清洗后的文件名
func (s *ImageService) Upload(ctx context.Context, p UploadParams) (string, error) {
	name, err := s.upload(ctx, p)
	result := "ok"
	if err != nil {
		result = strings.ToLower(retcode.KindOf(err).String())
	} else {
		metrics.ImageUploadBytes.Observe(float64(p.Size))
	}
	metrics.ImageUploads.WithLabelValues(result).Inc()
	return name, err
}

func (s *ImageService) upload(ctx context.Context, p UploadParams) (string, error) {
	if p.Filename == "" {
		return "", retcode.New(retcode.EmptyFilename, "No selected file")
	}
	if !s.allowedExt(p.Filename) {
		return "", retcode.New(retcode.UnsupportedType, "File type not allowed")
	}
	name, ok := storage.SanitizeFilename(p.Filename)
	// 清洗后扩展名丢失（如 ".png"）同样拒绝
	if !ok || !s.allowedExt(name) {
		return "", retcode.New(retcode.UnsupportedType, "File type not allowed")
	}
	if s.policy.MaxBytes > 0 && p.Size > s.policy.MaxBytes {
		return "", retcode.New(retcode.TooLarge, "File too large")
	}
	if err := s.Store.Save(ctx, name, p.Body, p.Size, p.ContentType); err != nil {
		return "", retcode.Storage(err)
	}
	return name, nil
}

// List 存储中的全部文件名，不按扩展名过滤
func (s *ImageService) List(ctx context.Context) ([]string, error) {
	names, err := s.Store.List(ctx)
	if err != nil {
		return nil, retcode.Storage(err)
	}
	return names, nil
}

// Open 读取时不再清洗文件名，越界由存储层拒绝
func (s *ImageService) Open(ctx context.Context, name string) (*storage.Object, error) {
	obj, err := s.Store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, retcode.New(retcode.NotFound, "Not Found")
		}
		return nil, retcode.Storage(err)
	}
	return obj, nil
}
