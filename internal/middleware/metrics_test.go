package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method, route, status})
}

func (*recordingRecorder) IncItemCreated() {}
func (*recordingRecorder) IncUserRegistered(string) {}
func (*recordingRecorder) IncLogin(string, string) {}
func (*recordingRecorder) IncUserUpdated() {}
func (*recordingRecorder) IncDonationCreated(bool) {}
func (*recordingRecorder) IncCacheHit(string) {}
func (*recordingRecorder) IncCacheMiss(string) {}

func TestMetrics_RoutePattern(t *testing.T) {
	t.Parallel()

	rec := &recordingRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/api/donations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/api/donations/a", "/api/donations/b", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	want := []observation{
		{http.MethodGet, "/api/donations/{id}", http.StatusNotFound},
		{http.MethodGet, "/api/donations/{id}", http.StatusNotFound},
		{http.MethodGet, unmatchedRoute, http.StatusNotFound},
	}
	if len(rec.obs) != len(want) {
		t.Fatalf("observations = %v", rec.obs)
	}
	for i := range want {
		if rec.obs[i] != want[i] {
			t.Errorf("observation %d = %+v, want %+v", i, rec.obs[i], want[i])
		}
	}
}
