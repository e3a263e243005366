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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"github.com/united-manufacturing-hub/network-observer/internal"
)

// Names of the two configured dependencies. The set is fixed at startup,
// there is no dynamic registration.
const (
	CacheStoreName      = "cache"
	RelationalStoreName = "relational"
)

// ProbeTimeout bounds a single connectivity check.
var ProbeTimeout = internal.FiveSeconds

// Prometheus metrics
var (
	dependencyUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_up",
			Help: "Connection status of external dependencies (1 up, 0 down)",
		},
		[]string{"dependency"},
	)
)

// Prober is a single explicit connectivity check against one dependency.
// A probe is never fatal; it returns a verdict, not an error.
type Prober interface {
	Probe(ctx context.Context) shared.ServiceStatus
}

// Registry holds the last known ServiceStatus per dependency. Probes write,
// the aggregator and the health endpoint read. Statuses start out unknown
// until the first probe completes.
type Registry struct {
	statuses map[string]shared.ServiceStatus
	order    []string
	mutex    sync.RWMutex
}

func NewRegistry(names ...string) *Registry {
	r := &Registry{
		statuses: make(map[string]shared.ServiceStatus, len(names)),
		order:    names,
	}
	for _, name := range names {
		r.statuses[name] = shared.ServiceStatus{
			Name:  name,
			State: shared.StateUnknown,
		}
	}
	return r
}

func (r *Registry) update(status shared.ServiceStatus) {
	r.mutex.Lock()
	if _, known := r.statuses[status.Name]; known {
		r.statuses[status.Name] = status
	}
	r.mutex.Unlock()
}

// Statuses returns a copy of all dependency statuses in registration order.
func (r *Registry) Statuses() []shared.ServiceStatus {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	statuses := make([]shared.ServiceStatus, 0, len(r.order))
	for _, name := range r.order {
		statuses = append(statuses, r.statuses[name])
	}
	return statuses
}

// Status returns the last known status for one dependency.
func (r *Registry) Status(name string) (shared.ServiceStatus, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	status, known := r.statuses[name]
	return status, known
}

// verdict turns the outcome of a completed connectivity check into a
// ServiceStatus and flips the prometheus gauge for that dependency.
func verdict(name string, latency time.Duration, err error) shared.ServiceStatus {
	status := shared.ServiceStatus{
		Name:        name,
		LastChecked: time.Now().UTC(),
	}
	if err != nil {
		status.State = shared.StateFailed
		dependencyUp.WithLabelValues(name).Set(0)
		return status
	}
	status.State = shared.StateConnected
	status.LatencyMs = latency.Milliseconds()
	dependencyUp.WithLabelValues(name).Set(1)
	return status
}
