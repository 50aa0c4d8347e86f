package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"param-server/src/helpers"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest("tcp", nil)
		c.ObserveFetch("yahoo", time.Second, errors.New("x"))
		c.ConnectionOpened()
		c.ConnectionClosed()
	})
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.ObserveRequest("tcp", nil)
	c.ObserveRequest("tcp", nil)
	c.ObserveRequest("tcp", helpers.NewProtocolError("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("tcp", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("tcp", "protocol")))

	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeConnections))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveFetch("yahoo", 200*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "paramserver_fetch_seconds_count")
}
