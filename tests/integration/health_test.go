package integration

import (
	"net/http"
	"testing"
)

// TestHealthEndpoints verifies the liveness and readiness probes of a running
// marketplace service. Requires docker-compose to be up; skips otherwise.
func TestHealthEndpoints(t *testing.T) {
	skipIfNotRunning(t)

	t.Run("liveness", func(t *testing.T) {
		status, body := httpGet(t, baseURL()+"/health/live")
		requireStatus(t, status, http.StatusOK)
		if got := extractField(body, "status"); got != "up" {
			t.Errorf("unexpected liveness status: %v", got)
		}
	})

	t.Run("readiness", func(t *testing.T) {
		status, body := httpGet(t, baseURL()+"/health/ready")
		requireStatus(t, status, http.StatusOK)
		if got := extractField(body, "status"); got != "up" {
			t.Errorf("unexpected readiness status: %v", got)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(baseURL() + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics failed: %v", err)
		}
		defer resp.Body.Close()
		requireStatus(t, resp.StatusCode, http.StatusOK)
	})
}
