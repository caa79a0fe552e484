package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/things/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "204"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "204")))

	before = testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/missing", "404"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/missing", "404")))
}

func TestToggleState(t *testing.T) {
	assert.Equal(t, "on", ToggleState(true))
	assert.Equal(t, "off", ToggleState(false))
}
