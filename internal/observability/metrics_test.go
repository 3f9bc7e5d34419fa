package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDomainCollectors_Registered(t *testing.T) {
	base := testutil.ToFloat64(StoreOps.WithLabelValues("create", OutcomeOK))
	StoreOps.WithLabelValues("create", OutcomeOK).Inc()
	if got := testutil.ToFloat64(StoreOps.WithLabelValues("create", OutcomeOK)); got != base+1 {
		t.Fatalf("store ops counter = %v, want %v", got, base+1)
	}

	baseA := testutil.ToFloat64(AssistantRequests.WithLabelValues("label", OutcomeError))
	AssistantRequests.WithLabelValues("label", OutcomeError).Inc()
	if got := testutil.ToFloat64(AssistantRequests.WithLabelValues("label", OutcomeError)); got != baseA+1 {
		t.Fatalf("assistant counter = %v, want %v", got, baseA+1)
	}

	g := testutil.ToFloat64(ActiveSubscriptions)
	ActiveSubscriptions.Inc()
	ActiveSubscriptions.Dec()
	if testutil.ToFloat64(ActiveSubscriptions) != g {
		t.Fatalf("gauge should return to its baseline")
	}
}
