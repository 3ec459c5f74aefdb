package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-portfolio/internal/domain/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveActionName(t *testing.T) {
	cases := []struct{ path, method, want string }{
		{"/api/v1/users/:id", "DELETE", "delete_api_v1_users_id"},
		{"/api/v1/users/save", "POST", "post_api_v1_users_save"},
		{"/", "POST", "post"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, deriveActionName(tc.path, tc.method))
	}
}

func TestOperationLogDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), OperationLog(nil))
	r.POST("/x", func(c *gin.Context) { c.String(http.StatusCreated, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
}

func TestTraceMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = c.GetString(TraceIDKey) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(TraceIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(TraceIDHeader))
}

type sentEvent struct {
	key     string
	event   model.OpLogEvent
	headers map[string]string
}

type fakeSender struct{ sent chan sentEvent }

func (f *fakeSender) SendWithHeaders(_ context.Context, key, value []byte, headers map[string]string) error {
	var e model.OpLogEvent
	if err := json.Unmarshal(value, &e); err != nil {
		return err
	}
	f.sent <- sentEvent{key: string(key), event: e, headers: headers}
	return nil
}

func TestOperationLogPublishesMutation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &fakeSender{sent: make(chan sentEvent, 1)}
	r := gin.New()
	r.Use(TraceMiddleware())
	g := r.Group("/api/v1", OperationLog(s))
	g.DELETE("/users/:id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "deleted"}) })
	g.GET("/users", func(c *gin.Context) { c.JSON(http.StatusOK, []any{}) })

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/7", nil)
	req.Header.Set(TraceIDHeader, "trace-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got sentEvent
	select {
	case got = <-s.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("no operation log event published")
	}
	assert.Equal(t, "delete_api_v1_users_id", got.key)
	assert.Equal(t, "delete_api_v1_users_id", got.event.ActionName)
	assert.Equal(t, "/api/v1/users/:id", got.event.Path)
	assert.Equal(t, "7", got.event.Target)
	assert.Equal(t, http.MethodDelete, got.event.Method)
	assert.Equal(t, http.StatusOK, got.event.Status)
	assert.Equal(t, "trace-7", got.event.TraceID)
	assert.Equal(t, "trace-7", got.headers["trace_id"])

	// 读请求不发送
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	select {
	case e := <-s.sent:
		t.Fatalf("unexpected event for read request: %+v", e.event)
	case <-time.After(50 * time.Millisecond):
	}
}
