package kit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func newTestRouter(deps RouterDeps) *httptest.Server {
	r := NewRouter(deps)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	return httptest.NewServer(r)
}

func get(t *testing.T, url, token string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestNewRouter_MetricsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newTestRouter(RouterDeps{Log: zap.NewNop(), Service: "svc", Registry: reg, MetricsEnabled: true, MetricsToken: "tok"})
	t.Cleanup(ts.Close)

	get(t, ts.URL+"/items/1", "")
	get(t, ts.URL+"/items/2", "")

	want := `
		# HELP http_requests_total Total HTTP requests
		# TYPE http_requests_total counter
		http_requests_total{method="GET",path="/items/{id}",service="svc",status="204"} 2
	`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "http_requests_total"); err != nil {
		t.Fatalf("metrics: %v", err)
	}

	if code := get(t, ts.URL+"/metrics", ""); code != http.StatusForbidden {
		t.Fatalf("metrics without token status=%d", code)
	}
	if code := get(t, ts.URL+"/metrics", "tok"); code != http.StatusOK {
		t.Fatalf("metrics with token status=%d", code)
	}
}

func TestNewRouter_NoRegistry(t *testing.T) {
	ts := newTestRouter(RouterDeps{})
	t.Cleanup(ts.Close)

	if code := get(t, ts.URL+"/metrics", ""); code != http.StatusNotFound {
		t.Fatalf("metrics without registry status=%d", code)
	}
	if code := get(t, ts.URL+"/panic", ""); code != http.StatusInternalServerError {
		t.Fatalf("panic status=%d", code)
	}
}
