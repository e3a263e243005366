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
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

// CacheStore probes the redis cache dependency with PING.
type CacheStore struct {
	client   *redis.Client
	registry *Registry
}

var _ Prober = (*CacheStore)(nil)

// NewCacheStore creates the redis client. No connection is attempted here;
// the first Probe decides whether the store is reachable.
func NewCacheStore(redisURI string, redisPassword string, redisDB int, registry *Registry) *CacheStore {
	client := redis.NewClient(
		&redis.Options{
			Addr:     redisURI,
			Password: redisPassword,
			DB:       redisDB,
		})
	zap.S().Debugf("Cache store client created for %s", redisURI)

	return &CacheStore{
		client:   client,
		registry: registry,
	}
}

// Probe pings the cache store within ProbeTimeout and records the verdict.
func (s *CacheStore) Probe(ctx context.Context) shared.ServiceStatus {
	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	start := time.Now()
	err := s.client.Ping(probeCtx).Err()
	latency := time.Since(start)

	if err != nil {
		zap.S().Warnf("Cache store probe failed: %s", err)
	}

	status := verdict(CacheStoreName, latency, err)
	s.registry.update(status)
	return status
}

// Shutdown closes the redis client and marks the store disconnected.
func (s *CacheStore) Shutdown() error {
	s.registry.update(
		shared.ServiceStatus{
			Name:        CacheStoreName,
			State:       shared.StateDisconnected,
			LastChecked: time.Now().UTC(),
		})
	return s.client.Close()
}
