package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSyncMetricsRecordOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.IncPersistWrite("cart")
	m.IncPersistWrite("cart")
	m.IncPersistFailure("wishlist")
	m.IncCoalesced("cart")
	m.ObserveSync("cart.push", 30*time.Millisecond, nil)
	m.ObserveSync("cart.push", 30*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.persistWrites.WithLabelValues("cart")); got != 2 {
		t.Fatalf("expected 2 cart writes, got %v", got)
	}
	if got := testutil.ToFloat64(m.persistFailures.WithLabelValues("wishlist")); got != 1 {
		t.Fatalf("expected 1 wishlist failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.syncJobs.WithLabelValues("cart.push", "failure")); got != 1 {
		t.Fatalf("expected 1 failed push, got %v", got)
	}
}

func TestSyncMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *SyncMetrics
	m.IncPersistWrite("cart")
	m.ObserveSync("cart.push", time.Second, nil)

	unregistered := NewSyncMetrics(nil)
	unregistered.IncCoalesced("")
}
