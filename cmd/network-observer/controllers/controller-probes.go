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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/helpers"
)

var (
	errCacheNotInitialized      = errors.New("cache store client was never initialized")
	errRelationalNotInitialized = errors.New("relational store client was never initialized")
)

// GetTestCacheStoreHandler re-probes the cache store on demand and returns
// the fresh verdict. 500 only when the client was never initialized.
func (ctl *Controller) GetTestCacheStoreHandler(c *gin.Context) {
	if ctl.cacheStore == nil {
		helpers.HandleInternalServerError(c, errCacheNotInitialized)
		return
	}
	c.JSON(http.StatusOK, ctl.cacheStore.Probe(c.Request.Context()))
}

// GetTestRelationalStoreHandler re-probes the relational store on demand.
func (ctl *Controller) GetTestRelationalStoreHandler(c *gin.Context) {
	if ctl.relationalStore == nil {
		helpers.HandleInternalServerError(c, errRelationalNotInitialized)
		return
	}
	c.JSON(http.StatusOK, ctl.relationalStore.Probe(c.Request.Context()))
}
