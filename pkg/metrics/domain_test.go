package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestDomainMetricsCountByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)
	m.Settlement(OutcomeSettled)
	m.Settlement(OutcomeSettled)
	m.Settlement(OutcomeReplayed)
	m.Bid("completed")
	m.Redemption()
	m.OrderStatus("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	settled, err := fetchCounterValue(mfs, "marketplace_settlements_total", "outcome", OutcomeSettled)
	require.NoError(t, err)
	require.Equal(t, float64(2), settled)

	replayed, err := fetchCounterValue(mfs, "marketplace_settlements_total", "outcome", OutcomeReplayed)
	require.NoError(t, err)
	require.Equal(t, float64(1), replayed)

	unknown, err := fetchCounterValue(mfs, "marketplace_order_transitions_total", "status", "unknown")
	require.NoError(t, err)
	require.Equal(t, float64(1), unknown)

	redemptions := findMetricFamily(mfs, "marketplace_discount_redemptions_total")
	require.NotNil(t, redemptions)
	require.Equal(t, float64(1), redemptions.GetMetric()[0].GetCounter().GetValue())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var d *DomainMetrics
	d.Settlement(OutcomeSettled)
	d.Redemption()
	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/x", 200, time.Second)
	NewDomainMetrics(nil).Bid("placed")
}

func TestHTTPMetricsObserveRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)
	h.Observe(http.MethodGet, "/api/v1/items/{itemId}", http.StatusOK, 20*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	sum, err := fetchHistogramSum(mfs, "marketplace_http_request_duration_seconds", "route", "/api/v1/items/{itemId}")
	require.NoError(t, err)
	require.InDelta(t, 0.02, sum, 0.0001)
}
