package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore 本地目录存储
type LocalStore struct {
	dir string
}

// NewLocal 目录不存在时创建
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Dir() string { return s.dir }

// Save 直接覆盖写入，并发同名上传以最后写入者为准
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if !validName(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// List 返回目录下全部条目，不按类型过滤
func (s *LocalStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Open 越界或不存在的名字统一返回 ErrNotFound
func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return &Object{Body: f, Size: st.Size(), ContentType: contentTypeOf(name)}, nil
}

func (s *LocalStore) Ping(_ context.Context) error {
	st, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
