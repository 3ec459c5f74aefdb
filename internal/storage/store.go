package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
)

var ErrNotFound = errors.New("image not found")

// Object 读取结果；调用方负责关闭 Body
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// ImageStore 上传文件的存放位置。文件名即身份，同名覆盖。
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (*Object, error)
	Ping(ctx context.Context) error
	Backend() string
}

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
