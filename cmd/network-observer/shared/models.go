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

package shared

import "time"

// ServiceState is the connectivity verdict of a single external dependency.
type ServiceState string

const (
	// StateUnknown is the state before the first probe has completed.
	StateUnknown ServiceState = "unknown"
	// StateConnected means the last probe succeeded.
	StateConnected ServiceState = "connected"
	// StateFailed means the last probe timed out or was refused.
	StateFailed ServiceState = "failed"
	// StateDisconnected means the client was shut down on purpose.
	StateDisconnected ServiceState = "disconnected"
)

// ServiceStatus is the last known probe result for one dependency.
// Only probes mutate it; everything else reads copies.
type ServiceStatus struct {
	LastChecked time.Time    `json:"lastChecked"`
	Name        string       `json:"name"`
	State       ServiceState `json:"state"`
	LatencyMs   int64        `json:"latencyMs,omitempty"`
}

// Snapshot is an immutable point-in-time summary of traffic volume,
// unique clients, uptime, process memory and dependency health.
type Snapshot struct {
	Timestamp         time.Time       `json:"timestamp"`
	Services          []ServiceStatus `json:"serviceStatuses"`
	RequestCount      uint64          `json:"requestCount"`
	UniqueClientCount int             `json:"uniqueClientCount"`
	UptimeMs          int64           `json:"uptimeMs"`
	MemoryUsageMiB    float64         `json:"memoryUsage"`
}
