package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncItemCreated()
	m.IncUserRegistered(MethodGoogle)
	m.IncUserRegistered(MethodGoogle)
	m.IncLogin(MethodPassword, OutcomeFailure)
	m.IncUserUpdated()
	m.IncDonationCreated(true)
	m.IncDonationCreated(false)
	m.IncCacheHit(CacheUser)
	m.IncCacheMiss(CacheDonation)
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)

	snap := m.Snapshot()
	if snap.ItemsCreated != 1 || snap.UsersUpdated != 1 || snap.HTTPRequests != 1 {
		t.Errorf("unexpected scalar counters: %+v", snap)
	}
	if snap.DonationsCreated != 2 || snap.DonationsWithImage != 1 {
		t.Errorf("donations = %d (with image %d), want 2 (1)", snap.DonationsCreated, snap.DonationsWithImage)
	}
	if snap.UsersRegistered[MethodGoogle] != 2 {
		t.Errorf("UsersRegistered = %v", snap.UsersRegistered)
	}
	if snap.Logins["password/failure"] != 1 {
		t.Errorf("Logins = %v", snap.Logins)
	}
	if snap.CacheHits[CacheUser] != 1 || snap.CacheMisses[CacheDonation] != 1 {
		t.Errorf("cache counters = %v / %v", snap.CacheHits, snap.CacheMisses)
	}

	// Snapshots are copies.
	snap.Logins["password/failure"] = 99
	if m.Snapshot().Logins["password/failure"] != 1 {
		t.Error("Snapshot should not alias internal state")
	}
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.IncLogin(MethodPassword, OutcomeSuccess)
	p.IncLogin(MethodPassword, OutcomeSuccess)
	p.IncDonationCreated(true)
	p.IncCacheHit(CacheUser)

	if got := testutil.ToFloat64(p.logins.WithLabelValues(MethodPassword, OutcomeSuccess)); got != 2 {
		t.Errorf("logins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.donationsCreated.WithLabelValues("true")); got != 1 {
		t.Errorf("donations with image = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheLookups.WithLabelValues(CacheUser, "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	p.IncItemCreated()
	p.ObserveHTTPRequest(http.MethodPost, "/api/items", http.StatusCreated, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		"fooddelivering_items_created_total 1",
		`fooddelivering_http_requests_total{method="POST",route="/api/items",status="201"} 1`,
		"fooddelivering_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

func TestRecorders_SatisfyInterface(t *testing.T) {
	t.Parallel()

	var _ Recorder = NewNoop()
	var _ Recorder = NewInMemory()
	var _ Recorder = NewPrometheus(prometheus.NewRegistry())
}
