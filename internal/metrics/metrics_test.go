package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Records(t *testing.T) {
	m := New()
	rec := models.CleanedRecord{RecordID: "1", Fields: []models.CleanedField{
		{Column: "ejercicio", Status: models.StatusCleaned},
		{Column: "rfc_adjudicado", Status: models.StatusRejected},
	}}

	require.NoError(t, m.Write(context.Background(), []models.CleanedRecord{rec, rec}))
	m.ObserveRecord(rec)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fields.WithLabelValues("rfc_adjudicado", "rejected")))
	assert.NoError(t, m.Close())
}

func TestMetrics_Cache(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cache.WithLabelValues("miss")))
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/v1/jobs/:jobID/status", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/jobs/abc/status", nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/v1/jobs/:jobID/status", "GET", "404")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `pnt_cleaner_http_requests_total{code="404",method="GET",route="/v1/jobs/:jobID/status"} 2`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
