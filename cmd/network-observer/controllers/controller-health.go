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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
)

type healthResponse struct {
	Status    string                         `json:"status"`
	Timestamp time.Time                      `json:"timestamp"`
	Services  map[string]shared.ServiceState `json:"services"`
}

// GetHealthHandler always answers 200 while the process is up. Dependency
// states are informational; a failed store degrades the services map, never
// the top-level status.
func (ctl *Controller) GetHealthHandler(c *gin.Context) {
	services := make(map[string]shared.ServiceState)
	for _, status := range ctl.aggregator.Report().Services {
		services[status.Name] = status.State
	}

	status := "healthy"
	if !ctl.aggregator.IsHealthy() {
		status = "unhealthy"
	}

	c.JSON(
		http.StatusOK,
		healthResponse{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Services:  services,
		})
}
