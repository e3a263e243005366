// Copyright 2023 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/controllers"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/telemetry"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration",
		},
	)
	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)
)

// SetupRestAPI initializes the REST API and starts listening
func SetupRestAPI(ctl *controllers.Controller, tracker *telemetry.RequestTracker, port int) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// The event stream and the prometheus wire format must not be gzipped,
	// both rely on the response being written incrementally or scraped raw.
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/stream/stats", "/metrics"})))

	router.Use(addCorsHeaders())
	router.Use(trackRequests(tracker))

	router.GET("/health", ctl.GetHealthHandler)
	router.GET("/network-info", ctl.GetNetworkInfoHandler)
	router.GET("/test-relational-store", ctl.GetTestRelationalStoreHandler)
	router.GET("/test-cache-store", ctl.GetTestCacheStoreHandler)
	router.GET("/stream/stats", ctl.GetStreamStatsHandler)
	router.GET("/api/metrics", ctl.GetAppMetricsHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	go func() {
		err := router.Run(fmt.Sprintf(":%d", port))
		if err != nil {
			zap.S().Fatalf("Failed to start REST API: %s", err)
		}
	}()
}

// trackRequests records every inbound request exactly once, then counts it
// for prometheus once the status is known.
func trackRequests(tracker *telemetry.RequestTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracker.RecordRequest(clientIdentity(c))
		activeConnections.Inc()
		start := time.Now()

		c.Next()

		httpRequestDuration.Observe(time.Since(start).Seconds())
		activeConnections.Dec()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// clientIdentity resolves the opaque client identifier: X-Real-IP first, then
// the first X-Forwarded-For hop, then the bare remote address.
func clientIdentity(c *gin.Context) string {
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

func addCorsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Add cors headers for reply to original requester
		c.Header("Access-Control-Allow-Headers", "content-type, Authorization")
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Next()
	}
}
