package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.UpstreamFetch("fakestore", "ok")
	m.UpstreamFetch("fakestore", "ok")
	m.UpstreamFetch("books", "error")
	m.CartMutation("add", "ok")
	m.Recommendation("")

	require.Equal(t, 2.0, testutil.ToFloat64(m.upstream.WithLabelValues("fakestore", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.upstream.WithLabelValues("books", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.recs.WithLabelValues("unknown")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.UpstreamFetch("x", "ok")
	m.CartMutation("add", "ok")
	m.Recommendation("ok")

	New(nil).CartMutation("add", "ok")
}
