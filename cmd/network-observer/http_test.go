package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/telemetry"
)

func testContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	c.Request.RemoteAddr = remoteAddr
	for key, value := range headers {
		c.Request.Header.Set(key, value)
	}
	return c
}

func TestClientIdentity(t *testing.T) {
	tcs := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote address only", "10.0.0.7:51234", nil, "10.0.0.7"},
		{"remote address without port", "10.0.0.7", nil, "10.0.0.7"},
		{"x-real-ip wins", "10.0.0.7:51234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"first forwarded hop", "10.0.0.7:51234", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "198.51.100.4"},
		{
			"x-real-ip beats forwarded-for",
			"10.0.0.7:51234",
			map[string]string{"X-Real-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.4"},
			"203.0.113.9",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			identity := clientIdentity(testContext(tc.remoteAddr, tc.headers))
			if identity != tc.expected {
				t.Errorf("expected client identity %q, got %q", tc.expected, identity)
			}
		})
	}
}

func TestTrackRequestsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracker := telemetry.NewRequestTracker()

	router := gin.New()
	router.Use(trackRequests(tracker))
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	clients := []string{"10.1.0.1", "10.1.0.2", "10.1.0.1"}
	for _, client := range clients {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)
		request.RemoteAddr = client + ":40000"
		router.ServeHTTP(recorder, request)
	}

	requests, uniqueClients := tracker.Snapshot()
	if requests != uint64(len(clients)) {
		t.Errorf("expected %d tracked requests, got %d", len(clients), requests)
	}
	if uniqueClients != 2 {
		t.Errorf("expected 2 unique clients, got %d", uniqueClients)
	}

	// every request decrements the in-flight gauge again and leaves a
	// duration observation behind
	if inFlight := testutil.ToFloat64(activeConnections); inFlight != 0 {
		t.Errorf("expected 0 active connections after all requests finished, got %v", inFlight)
	}
	var durations dto.Metric
	if err := httpRequestDuration.Write(&durations); err != nil {
		t.Fatalf("Error reading duration histogram: %s", err)
	}
	if observed := durations.GetHistogram().GetSampleCount(); observed < uint64(len(clients)) {
		t.Errorf("expected at least %d duration observations, got %d", len(clients), observed)
	}
}
