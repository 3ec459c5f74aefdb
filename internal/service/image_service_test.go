package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go-portfolio/internal/storage"
	"go-portfolio/internal/util/retcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageService(t *testing.T, maxBytes int64) (*ImageService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := storage.NewLocal(dir)
	require.NoError(t, err)
	return NewImageService(store, ImagePolicy{AllowedExt: []string{"png", "jpg", "jpeg", "gif"}, MaxBytes: maxBytes}), dir
}

func upload(svc *ImageService, name string, body []byte) (string, error) {
	return svc.Upload(context.Background(), UploadParams{Filename: name, Size: int64(len(body)), Body: bytes.NewReader(body)})
}

func TestImageUploadCaseInsensitiveExt(t *testing.T) {
	svc, _ := newImageService(t, 0)
	body := []byte("\x89PNG\r\n\x1a\nrest")

	name, err := upload(svc, "photo.PNG", body)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", name)

	obj, err := svc.Open(context.Background(), "photo.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	got, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestImageUploadRejections(t *testing.T) {
	svc, _ := newImageService(t, 4)
	cases := []struct {
		name string
		body []byte
		kind retcode.Kind
	}{
		{"", []byte("x"), retcode.EmptyFilename},
		{"malware.exe", []byte("MZ"), retcode.UnsupportedType},
		{"png", []byte("x"), retcode.UnsupportedType},
		{".png", []byte("x"), retcode.UnsupportedType},
		{"big.gif", []byte("GIF89a"), retcode.TooLarge},
	}
	for _, tc := range cases {
		_, err := upload(svc, tc.name, tc.body)
		require.Error(t, err, tc.name)
		assert.Equal(t, tc.kind, retcode.KindOf(err), tc.name)
	}

	names, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestImageUploadTraversalStaysInDir(t *testing.T) {
	svc, dir := newImageService(t, 0)
	name, err := upload(svc, "../../evil.png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "evil.png", name)

	_, err = os.Stat(filepath.Join(dir, "evil.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "evil.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestImageOpenMissing(t *testing.T) {
	svc, _ := newImageService(t, 0)
	_, err := svc.Open(context.Background(), "nonexistent.png")
	assert.ErrorIs(t, err, retcode.ErrNotFound)
}
