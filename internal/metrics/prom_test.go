package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetBuildInfo("1.0.0", "abc", "2024-01-01")
	RecordRequest("eth_chainId", true)
	RecordRequest("eth_sendTransaction", false)
	RecordConsent("eth_sendTransaction", false)
	RecordDroppedFrame()
	ObserveRequestDuration("eth_chainId", 100*time.Millisecond)
	SessionOpened()
	SessionOpened()
	SessionClosed()

	if v := testutil.ToFloat64(bridgeRequests.WithLabelValues("eth_chainId", "success")); v != 1 {
		t.Fatalf("bridge requests: %v", v)
	}
	if v := testutil.ToFloat64(bridgeRequests.WithLabelValues("eth_sendTransaction", "error")); v != 1 {
		t.Fatalf("bridge request errors: %v", v)
	}
	if v := testutil.ToFloat64(consentDecisions.WithLabelValues("eth_sendTransaction", "rejected")); v != 1 {
		t.Fatalf("consent decisions: %v", v)
	}
	if v := testutil.ToFloat64(droppedFrames); v != 1 {
		t.Fatalf("dropped frames: %v", v)
	}
	if v := testutil.ToFloat64(sessions); v != 1 {
		t.Fatalf("sessions: %v", v)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2024-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
}
