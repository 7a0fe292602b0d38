package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()

	rec, err := New(reg)
	require.NoError(t, err)

	rec.ObserveResolution(http.StatusFound)
	rec.ObserveResolution(http.StatusFound)
	rec.ObserveResolution(http.StatusNotFound)
	rec.IncAnalyticsFailure("by_date")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.redirectRequests.WithLabelValues("302")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.redirectRequests.WithLabelValues("404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.analyticsFailures.WithLabelValues("by_date")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.analyticsFailures.WithLabelValues("total")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNew_NilRegisterer(t *testing.T) {
	rec, err := New(nil)

	assert.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()

	rec, err := New(reg)
	require.NoError(t, err)
	rec.ObserveResolution(http.StatusFound)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `url_redirector_redirect_requests_total{status="302"} 1`)
}
