package oplog

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/logging"
	"go-portfolio/internal/repository/dao"
	"go-portfolio/internal/repository/database"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memReader 按顺序吐出预置消息，取完后阻塞到 ctx 取消；记录提交过的 offset
type memReader struct {
	mu        sync.Mutex
	pending   []kafkaGo.Message
	committed []int64
}

func (r *memReader) FetchMessage(ctx context.Context) (kafkaGo.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkaGo.Message{}, ctx.Err()
}

func (r *memReader) CommitMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *memReader) Close() error { return nil }

func (r *memReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func openOpLogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New(database.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "oplog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func runConsumer(t *testing.T, c *Consumer) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestToRecord(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rec := toRecord(model.OpLogEvent{
		ActionName: "delete_api_v1_users_id",
		Path:       "/api/v1/users/:id",
		Target:     "7",
		Method:     "DELETE",
		Status:     200,
		Time:       "2024-01-02T03:04:05Z",
		Errors:     []string{"a", "b"},
	}, now)
	assert.Equal(t, "7", rec.Target)
	assert.Equal(t, "a; b", rec.Errors)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), rec.AddTime)

	rec = toRecord(model.OpLogEvent{Time: "not-a-time", Errors: []string{strings.Repeat("x", maxErrorsLen+10)}}, now)
	assert.Equal(t, now.Unix(), rec.AddTime)
	assert.Len(t, rec.Errors, maxErrorsLen)
}

func TestHandlePersists(t *testing.T) {
	ctx := context.Background()
	db := openOpLogDB(t)
	require.NoError(t, database.EnsureOpLogSchema(ctx, db))

	d := dao.NewOperationLogDAO(db)
	c := &Consumer{dao: d, logger: logging.NewNop()}

	require.NoError(t, c.Handle(ctx, []byte(`{"action_name":"post_api_v1_projects","path":"/api/v1/projects","method":"POST","status":200,"time":"2024-01-02T03:04:05Z"}`)))
	require.NoError(t, c.Handle(ctx, []byte(`{"action_name":"post_api_v1_upload","path":"/api/v1/upload","method":"POST","status":400,"errors":["File type not allowed"]}`)))
	assert.Error(t, c.Handle(ctx, []byte(`{broken`)))

	list, err := d.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "post_api_v1_upload", list[0].ActionName)
	assert.Equal(t, "File type not allowed", list[0].Errors)
	assert.Equal(t, 400, list[0].Status)
}

func TestRunCommitsAfterPersist(t *testing.T) {
	ctx := context.Background()
	db := openOpLogDB(t)
	require.NoError(t, database.EnsureOpLogSchema(ctx, db))
	d := dao.NewOperationLogDAO(db)
	r := &memReader{pending: []kafkaGo.Message{
		{Offset: 1, Value: []byte(`{"action_name":"post_api_v1_users_save","method":"POST","status":201}`)},
		{Offset: 2, Value: []byte(`{broken`)},
	}}
	c := &Consumer{reader: r, dao: d, logger: logging.NewNop(), retryBase: time.Millisecond}

	cancel, done := runConsumer(t, c)
	require.Eventually(t, func() bool { return len(r.Committed()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	// 无法解析的消息提交后跳过，不落库
	assert.Equal(t, []int64{1, 2}, r.Committed())
	list, err := d.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "post_api_v1_users_save", list[0].ActionName)
}

func TestRunHoldsOffsetUntilStored(t *testing.T) {
	ctx := context.Background()
	db := openOpLogDB(t) // 表尚未创建，写入必然失败
	d := dao.NewOperationLogDAO(db)
	r := &memReader{pending: []kafkaGo.Message{
		{Offset: 7, Value: []byte(`{"action_name":"delete_api_v1_users_id","target":"7","method":"DELETE","status":200}`)},
	}}
	c := &Consumer{reader: r, dao: d, logger: logging.NewNop(), retryBase: time.Millisecond}

	cancel, done := runConsumer(t, c)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, r.Committed(), "offset must not be committed while the row is not stored")

	// 数据库恢复后同一条消息落库并提交
	require.NoError(t, database.EnsureOpLogSchema(ctx, db))
	require.Eventually(t, func() bool { return len(r.Committed()) == 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	list, err := d.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "7", list[0].Target)
}

func TestRunStopsWithoutCommitOnCancel(t *testing.T) {
	d := dao.NewOperationLogDAO(openOpLogDB(t))
	r := &memReader{pending: []kafkaGo.Message{{Offset: 3, Value: []byte(`{"action_name":"post_api_v1_projects"}`)}}}
	c := &Consumer{reader: r, dao: d, logger: logging.NewNop(), retryBase: time.Millisecond}

	cancel, done := runConsumer(t, c)
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Empty(t, r.Committed())
}
