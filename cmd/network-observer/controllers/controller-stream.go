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
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
	"go.uber.org/zap"
)

// GetStreamStatsHandler keeps the response open and emits one snapshot event
// per broadcaster tick until the client disconnects. Each subscriber gets its
// own push loop; a broken pipe here ends this loop and nothing else.
func (ctl *Controller) GetStreamStatsHandler(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	err := ctl.broadcaster.Subscribe(
		c.Request.Context(),
		func(snapshot shared.Snapshot) error {
			payload, err := jsoniter.Marshal(snapshot)
			if err != nil {
				return err
			}
			if err := sse.Encode(c.Writer, sse.Event{Data: string(payload)}); err != nil {
				return err
			}
			c.Writer.Flush()
			return nil
		})
	if err != nil {
		zap.S().Debugf("Stats stream ended with error: %s", err)
	}
}
