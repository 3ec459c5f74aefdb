package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-portfolio/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func TestResourceOf(t *testing.T) {
	cases := map[string]string{
		"/api/v1/users":      "users",
		"/api/v1/users/:id":  "users",
		"/api/v1/users/save": "users",
		"/api/v1/projects":   "projects",
		"/api/v1/upload":     "images",
		"/api/v1/images":     "images",
		"/uploads/:filename": "images",
		"/readyz":            "ops",
		"/":                  "ops",
		"":                   "unmatched",
	}
	for route, want := range cases {
		assert.Equal(t, want, resourceOf(route), route)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "4xx", statusClass(http.StatusRequestEntityTooLarge))
	assert.Equal(t, "5xx", statusClass(http.StatusInternalServerError))
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.DELETE("/api/v1/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := metrics.RequestTotal.WithLabelValues("projects", "/api/v1/projects/:id", http.MethodDelete, "2xx")
	miss := metrics.RequestTotal.WithLabelValues("unmatched", "unmatched", http.MethodGet, "4xx")
	beforeHit, beforeMiss := metricValue(t, hit), metricValue(t, miss)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/projects/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path", nil))

	assert.Equal(t, beforeHit+3, metricValue(t, hit))
	assert.Equal(t, beforeMiss+1, metricValue(t, miss))
	assert.Zero(t, metricValue(t, metrics.Inflight))
}
