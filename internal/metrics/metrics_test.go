package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LineRead()
	m.DecodeFailed("malformed")
	m.FixEvaluated("accept")
	m.FixPublished(time.Now())
	m.ConnectResult(true)
	m.Disconnected()
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LineRead()
	m.LineRead()
	m.DecodeFailed("not applicable")
	m.FixEvaluated("accept")
	m.ConnectResult(false)
	m.ConnectResult(true)

	if got := testutil.ToFloat64(m.LinesRead); got != 2 {
		t.Errorf("lines read = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DecodeFailures.WithLabelValues("not applicable")); got != 1 {
		t.Errorf("decode failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed connects = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Connected); got != 1 {
		t.Errorf("connected = %v, want 1", got)
	}

	m.Disconnected()
	if got := testutil.ToFloat64(m.Connected); got != 0 {
		t.Errorf("connected after disconnect = %v, want 0", got)
	}

	at := time.Unix(1700000000, 0)
	m.FixPublished(at)
	if got := testutil.ToFloat64(m.LastFixUnix); got != 1700000000 {
		t.Errorf("last fix = %v", got)
	}
}
