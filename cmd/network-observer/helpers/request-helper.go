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

package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func HandleInternalServerError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInternalServerError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}

	zap.S().Errorw(
		"Internal server error",
		"error", err.Error(),
	)

	c.JSON(
		http.StatusInternalServerError,
		gin.H{
			"error":   err.Error(),
			"status":  http.StatusInternalServerError,
			"message": "The server had an internal error.",
		})
}
