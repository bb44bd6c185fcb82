package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics("storefront", reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:slug", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})

	for _, slug := range []string{"a", "b"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+slug, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("storefront", http.MethodGet, "/products/:slug", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.statusCategory.WithLabelValues("storefront", "4xx", http.MethodGet, "/products/:slug")))
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "4xx", statusCategory(403))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "", statusCategory(100))
}
