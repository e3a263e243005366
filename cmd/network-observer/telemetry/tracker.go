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
	"sync"
)

// RequestTracker counts inbound requests and remembers distinct client
// identities for the lifetime of the process. One instance is created by the
// composition root and handed to the request middleware; there is no reset.
type RequestTracker struct {
	clients  map[string]struct{}
	mutex    sync.RWMutex
	requests uint64
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{
		clients: make(map[string]struct{}),
	}
}

// RecordRequest increments the request counter and inserts clientID into the
// client set. Safe for many concurrent callers; both updates happen under one
// lock so a Snapshot never observes a half-applied increment.
func (t *RequestTracker) RecordRequest(clientID string) {
	t.mutex.Lock()
	t.requests++
	t.clients[clientID] = struct{}{}
	t.mutex.Unlock()
}

// Snapshot returns a consistent (requestCount, uniqueClientCount) pair.
func (t *RequestTracker) Snapshot() (requests uint64, uniqueClients int) {
	t.mutex.RLock()
	requests = t.requests
	uniqueClients = len(t.clients)
	t.mutex.RUnlock()
	return requests, uniqueClients
}
