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

/*
Target architecture:

Every inbound REST call passes the tracking middleware (http.go), which feeds
the process-wide RequestTracker. Handlers live in controllers/ and read
telemetry state or trigger explicit dependency probes (probes/); nothing in a
handler blocks on a dependency except the two explicit test endpoints. The
stats stream drives one broadcaster loop per subscriber.

A dependency being down is never fatal: the service keeps serving in a
degraded state and reports the failure through /health and /network-info.
*/

import (
	"context"
	"fmt"
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/controllers"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/probes"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/telemetry"
	"github.com/united-manufacturing-hub/network-observer/internal"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"
	"go.uber.org/zap"
)

var buildtime string

func main() {
	// Initialize zap logging
	logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, "PRODUCTION") //nolint:errcheck
	log := logger.New(logLevel)
	defer func(logger *zap.SugaredLogger) {
		_ = logger.Sync()
	}(log)

	zap.S().Infof("This is network-observer build date: %s", buildtime)

	// Read environment variables
	redisURI, _ := env.GetAsString("REDIS_URI", false, "localhost:6379")
	redisPassword, _ := env.GetAsString("REDIS_PASSWORD", false, "")
	redisDB, _ := env.GetAsInt("REDIS_DB", false, 0)

	PQHost, _ := env.GetAsString("POSTGRES_HOST", false, "localhost")
	PQPort, _ := env.GetAsInt("POSTGRES_PORT", false, 5432)
	PQUser, _ := env.GetAsString("POSTGRES_USER", false, "user")
	PQPassword, _ := env.GetAsString("POSTGRES_PASSWORD", false, "password")
	PQDBName, _ := env.GetAsString("POSTGRES_DATABASE", false, "appdb")
	PQSSLMode, _ := env.GetAsString("POSTGRES_SSL_MODE", false, "disable")

	servicePort, _ := env.GetAsInt("SERVICE_PORT", false, 5000)
	version, _ := env.GetAsString("VERSION", false, "1.0.0")

	// The shutdown handler is installed before anything opens a connection so
	// that the readiness check below can flip as soon as a signal arrives. The
	// store variables are captured by reference; they are assigned further down.
	var cacheStore *probes.CacheStore
	var relationalStore *probes.RelationalStore
	gs := internal.NewGracefulShutdown(func() error {
		if relationalStore != nil {
			relationalStore.Shutdown()
		}
		if cacheStore != nil {
			if err := cacheStore.Shutdown(); err != nil {
				zap.S().Warnf("Error closing cache store client: %s", err)
			}
		}
		return nil
	})

	// Healthcheck sidecar port for the orchestrator
	zap.S().Debugf("Setting up healthcheck")
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	health.AddReadinessCheck("shuttingDown", func() error {
		if gs.ShuttingDown() {
			return fmt.Errorf("shutdown")
		}
		return nil
	})
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe("0.0.0.0:8086", health)
		if err != nil {
			zap.S().Errorf("Error starting healthcheck: %s", err)
		}
	}()

	// Dependency clients. Neither store being down is fatal; a configuration
	// the pgx pool cannot even parse leaves the relational client nil and the
	// explicit test endpoint answering 500.
	registry := probes.NewRegistry(probes.CacheStoreName, probes.RelationalStoreName)

	cacheStore = probes.NewCacheStore(redisURI, redisPassword, redisDB, registry)

	var err error
	relationalStore, err = probes.NewRelationalStore(
		PQUser,
		PQPassword,
		PQDBName,
		PQHost,
		PQPort,
		PQSSLMode,
		registry)
	if err != nil {
		zap.S().Errorf("Relational store client not initialized: %s", err)
	}

	// Startup probes, once per dependency
	startupCtx, cancel := context.WithTimeout(context.Background(), 2*probes.ProbeTimeout)
	status := cacheStore.Probe(startupCtx)
	zap.S().Infof("Cache store startup probe: %s", status.State)
	if relationalStore != nil {
		status = relationalStore.Probe(startupCtx)
		zap.S().Infof("Relational store startup probe: %s", status.State)
	}
	cancel()

	// Telemetry core
	tracker := telemetry.NewRequestTracker()
	aggregator := telemetry.NewAggregator(tracker, registry)
	broadcaster := telemetry.NewBroadcaster(aggregator, internal.OneSecond)

	// Avoid a typed-nil Prober when the relational client failed to build
	var cacheProber probes.Prober = cacheStore
	var relationalProber probes.Prober
	if relationalStore != nil {
		relationalProber = relationalStore
	}

	ctl := controllers.New(
		aggregator,
		broadcaster,
		cacheProber,
		relationalProber,
		version,
		servicePort,
		map[string]string{
			"REDIS_URI":         redisURI,
			"POSTGRES_HOST":     PQHost,
			"POSTGRES_PORT":     fmt.Sprintf("%d", PQPort),
			"POSTGRES_DATABASE": PQDBName,
		})

	SetupRestAPI(ctl, tracker, servicePort)

	gs.Wait()
}
