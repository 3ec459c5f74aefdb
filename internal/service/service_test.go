package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/pkg/cache"
	"go-portfolio/internal/repository/dao"
	"go-portfolio/internal/repository/database"
	"go-portfolio/internal/util/retcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(database.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "svc.db")})
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func ptr[T any](v T) *T { return &v }

func TestUserServiceCreateThenListWithCache(t *testing.T) {
	ctx := context.Background()
	lc := cache.NewLayered(cache.New(), nil)
	svc := NewUserService(dao.NewUserDAO(newTestDB(t)), lc, ListTTL(time.Minute))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	id, err := svc.Create(ctx, CreateUserParams{Email: ptr("a@example.com"), Age: ptr(int64(28))})
	require.NoError(t, err)
	assert.Positive(t, id)

	// 写操作后缓存必须失效
	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "a@example.com", *list[0].Email)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	// 代际键两次 + 列表快照一次
	assert.Equal(t, uint64(3), lc.SnapshotMetrics().HitsL1)

	require.NoError(t, svc.Delete(ctx, id))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// 多实例共享 L2，按 boot 的组装方式各自构建缓存
func TestUserServiceCrossInstanceSeesCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	shared := cache.New()
	a := NewUserService(dao.NewUserDAO(db), cache.NewTiered(shared), ListTTL(time.Minute))
	b := NewUserService(dao.NewUserDAO(db), cache.NewTiered(shared), ListTTL(time.Minute))

	list, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = a.Create(ctx, CreateUserParams{Email: ptr("a@example.com"), Age: ptr(int64(30))})
	require.NoError(t, err)

	list, err = b.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "instance b must see the row created on instance a")
}

// load 读完数据库后暂停，期间发生 Create；恢复后的回写不能覆盖新数据
func TestListLoadRacingCreateDoesNotWriteBackStale(t *testing.T) {
	ctx := context.Background()
	lc := cache.NewTiered(nil)
	svc := NewUserService(dao.NewUserDAO(newTestDB(t)), lc, ListTTL(time.Minute))

	loaded := make(chan struct{})
	resume := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		list, err := cachedList(ctx, svc.Cache, svc.TTL, userListKey, "users", func(ctx context.Context) ([]model.User, error) {
			l, err := svc.DAO.List(ctx)
			close(loaded)
			<-resume
			return l, err
		})
		if err == nil && len(list) != 0 {
			err = assert.AnError
		}
		done <- err
	}()

	<-loaded
	_, err := svc.Create(ctx, CreateUserParams{Email: ptr("late@example.com"), Age: ptr(int64(40))})
	require.NoError(t, err)
	close(resume)

	select {
	case err := <-done:
		require.NoError(t, err, "paused load should have read the empty table")
	case <-time.After(5 * time.Second):
		t.Fatal("paused load did not finish")
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserServiceDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(dao.NewUserDAO(newTestDB(t)), nil, 0)
	id, err := svc.Create(ctx, CreateUserParams{Email: ptr("x@example.com"), Age: ptr(int64(1))})
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, id))
	assert.NoError(t, svc.Delete(ctx, id))
	assert.NoError(t, svc.Delete(ctx, 999999))
}

func TestUserServiceMissingRequiredField(t *testing.T) {
	svc := NewUserService(dao.NewUserDAO(newTestDB(t)), nil, 0)
	_, err := svc.Create(context.Background(), CreateUserParams{Email: ptr("only@example.com")})
	require.Error(t, err)
	assert.Equal(t, retcode.StorageFailure, retcode.KindOf(err))
	assert.Contains(t, err.Error(), "NOT NULL")
}

func TestProjectServiceNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(dao.NewProjectDAO(newTestDB(t)), cache.New(), ListTTL(time.Minute))

	var ids []int64
	for _, n := range []string{"c", "a", "b"} {
		id, err := svc.Create(ctx, CreateProjectParams{Name: ptr(n), URL: ptr("https://" + n + ".dev")})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, svc.Delete(ctx, ids[1]))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[1].ID)
	assert.Nil(t, list[0].Description)
}

func TestStorageErrorSurfacesAsStorageFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(dao.NewProjectDAO(db), nil, 0)
	require.NoError(t, database.Close(db))

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, retcode.ErrStorageFailure)
}
