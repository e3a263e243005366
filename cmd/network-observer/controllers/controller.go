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
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/probes"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/telemetry"
)

// Controller bundles the handler state. One instance per process in
// production, as many as needed in tests.
type Controller struct {
	aggregator      *telemetry.Aggregator
	broadcaster     *telemetry.Broadcaster
	cacheStore      probes.Prober
	relationalStore probes.Prober
	environment     map[string]string
	version         string
	listeningPort   int
}

// New wires the controller. cacheStore and relationalStore may be nil when
// the corresponding client could not be initialized; the explicit test
// endpoints then answer 500 until a restart fixes the configuration.
func New(
	aggregator *telemetry.Aggregator,
	broadcaster *telemetry.Broadcaster,
	cacheStore probes.Prober,
	relationalStore probes.Prober,
	version string,
	listeningPort int,
	environment map[string]string) *Controller {

	return &Controller{
		aggregator:      aggregator,
		broadcaster:     broadcaster,
		cacheStore:      cacheStore,
		relationalStore: relationalStore,
		environment:     environment,
		version:         version,
		listeningPort:   listeningPort,
	}
}
