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
	"context"
	"time"

	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

// PushFunc delivers one snapshot to a subscriber. A non-nil error means the
// subscriber is gone (e.g. broken pipe) and its loop must stop.
type PushFunc func(shared.Snapshot) error

// Broadcaster drives one periodic push loop per subscriber. Subscribers are
// fully independent; a dead one never affects the others or the tracker.
type Broadcaster struct {
	aggregator *Aggregator
	interval   time.Duration
}

func NewBroadcaster(aggregator *Aggregator, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = time.Second
	}
	return &Broadcaster{
		aggregator: aggregator,
		interval:   interval,
	}
}

// Interval returns the configured tick interval.
func (b *Broadcaster) Interval() time.Duration {
	return b.interval
}

// Subscribe pushes one snapshot immediately, then one per tick, until ctx is
// cancelled or push fails. The ticker is released on return, so cancellation
// frees the timer within one tick. A nil return means the subscriber
// disconnected normally; a non-nil return is the push failure that ended it.
func (b *Broadcaster) Subscribe(ctx context.Context, push PushFunc) error {
	if err := push(b.aggregator.Report()); err != nil {
		zap.S().Debugf("Subscriber rejected initial snapshot: %s", err)
		return err
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := push(b.aggregator.Report()); err != nil {
				zap.S().Debugf("Subscriber went away mid-stream: %s", err)
				return err
			}
		}
	}
}
