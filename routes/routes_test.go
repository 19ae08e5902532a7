package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/controllers"
	"github.com/pnt-cleaner/app/services"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/engine"
	"github.com/pnt-cleaner/internal/metrics"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/resources"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, m *metrics.Metrics) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := rules.MustDefault()
	var lists []reflist.List
	for _, name := range []string{
		cfg.Lists.AddressBlacklist, cfg.Lists.NameBlacklist, cfg.Lists.FirstSurnameBlacklist,
		cfg.Lists.SecondSurnameBlacklist, cfg.Lists.CompanyBlacklist, "mxn", "usd",
	} {
		lists = append(lists, reflist.List{Name: name, Lines: []string{"No aplica"}})
	}
	var catalogs []catalog.Catalog
	for _, name := range []string{"municipio_qro", "entidad_federativa", "paises", "tipo_procedimiento"} {
		catalogs = append(catalogs, catalog.Catalog{Name: name, Rows: []catalog.Row{{Key: "1", Name: "Querétaro"}}})
	}
	set := resources.NewSet(lists, catalogs)
	d, err := engine.NewDispatcher(cfg, set)
	require.NoError(t, err)

	cleaning := services.NewCleaningService(engine.NewProcessor(d, "", nil), engine.PoolConfig{Workers: 1, BatchSize: 1}, nil, cfg.Version, nil)
	var observer controllers.Observer
	if m != nil {
		observer = m
	}
	router := gin.New()
	SetupAllRoutes(router, Router{
		Cleaning: controllers.NewCleaningController(cleaning, observer, nil),
		Admin:    controllers.NewAdminController(services.NewAdminService(cleaning, set, nil, nil), nil),
		Metrics:  m,
	})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupAllRoutes(t *testing.T) {
	router := newRouter(t, metrics.New())

	for _, path := range []string{"/", "/health", "/ready", "/live", "/v1/health", "/v1/rules", "/v1/admin/stats", "/v1/admin/resources"} {
		assert.Equal(t, http.StatusOK, get(router, path).Code, path)
	}

	w := get(router, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")

	w = get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/v1/rules"`)
}

func TestSetupAllRoutes_NoMetrics(t *testing.T) {
	router := newRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, get(router, "/metrics").Code)
}
