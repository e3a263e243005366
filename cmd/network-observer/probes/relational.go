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

package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

// RelationalStore probes the postgres dependency by pinging its pool.
type RelationalStore struct {
	pool     *pgxpool.Pool
	registry *Registry
}

var _ Prober = (*RelationalStore)(nil)

// NewRelationalStore sets up the pgx pool. Pool creation is lazy, so a down
// database does not fail here; an unparsable configuration does, in which
// case the caller keeps running without a relational client.
func NewRelationalStore(
	PQUser string,
	PQPassword string,
	PQDBName string,
	PQHost string,
	PQPort int,
	PQSSLMode string,
	registry *Registry) (*RelationalStore, error) {

	psqlInfo := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		PQHost,
		PQPort,
		PQUser,
		PQPassword,
		PQDBName,
		PQSSLMode)

	parseConfig, err := pgxpool.ParseConfig(psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	parseConfig.MinConns = 2
	parseConfig.MaxConnIdleTime = 5 * time.Minute
	parseConfig.MaxConnLifetime = 10 * time.Minute

	connCtx, cancel := context.WithTimeout(context.Background(), ProbeTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connCtx, parseConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	zap.S().Debugf("Relational store pool created for %s:%d", PQHost, PQPort)

	return &RelationalStore{
		pool:     pool,
		registry: registry,
	}, nil
}

// Probe pings the relational store within ProbeTimeout and records the verdict.
func (s *RelationalStore) Probe(ctx context.Context) shared.ServiceStatus {
	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	start := time.Now()
	err := s.pool.Ping(probeCtx)
	latency := time.Since(start)

	if err != nil {
		zap.S().Warnf("Relational store probe failed: %s", err)
	}

	status := verdict(RelationalStoreName, latency, err)
	s.registry.update(status)
	return status
}

// Shutdown closes the pool and marks the store disconnected.
func (s *RelationalStore) Shutdown() {
	s.registry.update(
		shared.ServiceStatus{
			Name:        RelationalStoreName,
			State:       shared.StateDisconnected,
			LastChecked: time.Now().UTC(),
		})
	s.pool.Close()
}
