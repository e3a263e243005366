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

package controllers

import (
	"net"
	"net/http"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/probes"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

type containerInfo struct {
	Hostname      string `json:"hostname"`
	ContainerIP   string `json:"containerIp,omitempty"`
	Platform      string `json:"platform,omitempty"`
	ListeningPort int    `json:"listeningPort"`
	Protocol      string `json:"protocol"`
	Error         string `json:"error,omitempty"`
}

type networkInfoResponse struct {
	Container   containerInfo     `json:"container"`
	Stats       shared.Snapshot   `json:"stats"`
	Environment map[string]string `json:"environment"`
}

// GetNetworkInfoHandler reports host metadata, the current telemetry snapshot
// and the configuration values the service was started with. It never fails;
// metadata that cannot be read is reported as an error field instead.
func (ctl *Controller) GetNetworkInfoHandler(c *gin.Context) {
	container := containerInfo{
		ListeningPort: ctl.listeningPort,
		Protocol:      "HTTP/1.1",
	}

	hostname, err := os.Hostname()
	if err != nil {
		zap.S().Warnf("Cannot read hostname: %s", err)
		container.Error = err.Error()
	} else {
		container.Hostname = hostname
		container.ContainerIP = firstNonLoopbackAddress()
	}

	if hostInfo, err := host.Info(); err == nil {
		container.Platform = hostInfo.Platform
	}

	c.JSON(
		http.StatusOK,
		networkInfoResponse{
			Container:   container,
			Stats:       ctl.aggregator.Report(),
			Environment: ctl.environment,
		})
}

func firstNonLoopbackAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		zap.S().Debugf("Cannot list interface addresses: %s", err)
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return ""
}

type appMetricsResponse struct {
	Application    appSection   `json:"application"`
	Infrastructure infraSection `json:"infrastructure"`
	Dependencies   depsSection  `json:"dependencies"`
}

type appSection struct {
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	TotalRequests uint64  `json:"total_requests"`
	UniqueClients int     `json:"unique_clients"`
}

type infraSection struct {
	Hostname         string  `json:"hostname"`
	GoVersion        string  `json:"go_version"`
	MemoryUsageMiB   float64 `json:"memory_usage_mb"`
	SystemMemoryUsed float64 `json:"system_memory_used_percent"`
}

type depsSection struct {
	CacheConnected      bool `json:"cache_connected"`
	RelationalConnected bool `json:"relational_connected"`
}

// GetAppMetricsHandler exposes application level metrics as plain JSON, next
// to the prometheus wire format on /metrics.
func (ctl *Controller) GetAppMetricsHandler(c *gin.Context) {
	snapshot := ctl.aggregator.Report()

	hostname, _ := os.Hostname()

	var systemMemoryUsed float64
	if vmStat, err := mem.VirtualMemory(); err == nil {
		systemMemoryUsed = vmStat.UsedPercent
	}

	deps := depsSection{}
	for _, status := range snapshot.Services {
		connected := status.State == shared.StateConnected
		switch status.Name {
		case probes.CacheStoreName:
			deps.CacheConnected = connected
		case probes.RelationalStoreName:
			deps.RelationalConnected = connected
		}
	}

	c.JSON(
		http.StatusOK,
		appMetricsResponse{
			Application: appSection{
				Name:          "network-observer",
				Version:       ctl.version,
				UptimeSeconds: float64(snapshot.UptimeMs) / 1000,
				TotalRequests: snapshot.RequestCount,
				UniqueClients: snapshot.UniqueClientCount,
			},
			Infrastructure: infraSection{
				Hostname:         hostname,
				GoVersion:        runtime.Version(),
				MemoryUsageMiB:   snapshot.MemoryUsageMiB,
				SystemMemoryUsed: systemMemoryUsed,
			},
			Dependencies: deps,
		})
}
