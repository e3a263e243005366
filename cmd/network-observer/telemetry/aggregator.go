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

package telemetry

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

// StatusSource yields the last known status of every configured dependency.
// Implemented by probes.Registry.
type StatusSource interface {
	Statuses() []shared.ServiceStatus
}

// Aggregator composes tracker counters, uptime, a process memory reading and
// the cached dependency statuses into a Snapshot. It never performs a probe
// itself; dependency state is whatever the last completed probe left behind.
type Aggregator struct {
	startedAt time.Time
	tracker   *RequestTracker
	statuses  StatusSource
	proc      *process.Process
}

func NewAggregator(tracker *RequestTracker, statuses StatusSource) *Aggregator {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// Snapshots then report zero memory, everything else still works.
		zap.S().Warnf("Cannot attach to own process for memory readings: %s", err)
	}

	return &Aggregator{
		startedAt: time.Now(),
		tracker:   tracker,
		statuses:  statuses,
		proc:      proc,
	}
}

// Report assembles a new immutable Snapshot from cached state.
func (a *Aggregator) Report() shared.Snapshot {
	requests, uniqueClients := a.tracker.Snapshot()

	return shared.Snapshot{
		Timestamp:         time.Now().UTC(),
		RequestCount:      requests,
		UniqueClientCount: uniqueClients,
		UptimeMs:          time.Since(a.startedAt).Milliseconds(),
		MemoryUsageMiB:    a.memoryUsageMiB(),
		Services:          a.statuses.Statuses(),
	}
}

// IsHealthy is true as long as the process can answer at all. Dependency
// failures degrade the reported statuses but never the health verdict.
func (a *Aggregator) IsHealthy() bool {
	return true
}

func (a *Aggregator) memoryUsageMiB() float64 {
	if a.proc == nil {
		return 0
	}
	memInfo, err := a.proc.MemoryInfo()
	if err != nil || memInfo == nil {
		zap.S().Debugf("Cannot read process memory: %s", err)
		return 0
	}
	return float64(memInfo.RSS) / 1024 / 1024
}
