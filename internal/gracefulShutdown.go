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

package internal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownGracePeriod is how long shutdown tasks may take before the process
// is killed anyway. Kubernetes sends SIGTERM 30 seconds before SIGKILL.
const shutdownGracePeriod = 30 * time.Second

type GracefulShutdownHandler interface {
	Shutdown()          // Triggers a graceful shutdown programmatically.
	ShuttingDown() bool // Quickly checks if a shutdown is in progress.
	Wait()              // Blocks until shutdown tasks are complete.
}

type gracefulShutdown struct {
	quit         chan os.Signal // Blocks until a SIGTERM/SIGINT signal is received.
	shuttingDown chan bool      // Indicates if a shutdown is happening.
	wg           sync.WaitGroup // Waits until all shutdown tasks are complete.
}

// NewGracefulShutdown installs the SIGINT/SIGTERM handler. onShutdown (if not
// nil) runs after a signal is received and gets shutdownGracePeriod to close
// clients and flush state; the process exits afterwards either way.
func NewGracefulShutdown(onShutdown func() error) GracefulShutdownHandler {
	gs := &gracefulShutdown{
		quit:         make(chan os.Signal, 1),
		shuttingDown: make(chan bool, 1),
		wg:           sync.WaitGroup{},
	}
	gs.wg.Add(1)

	go func(gs *gracefulShutdown, onShutdown func() error) {
		defer gs.wg.Done()
		signal.Notify(gs.quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-gs.quit
		gs.shuttingDown <- true
		zap.S().Infow("Received signal, shutting down", "signal", sig.String())
		if onShutdown != nil {
			zap.S().Infow("Waiting for shutdown tasks to complete", "timeout", shutdownGracePeriod)
			killTimer := time.AfterFunc(shutdownGracePeriod, func() {
				zap.S().Errorw("Shutdown tasks did not complete in time", "timeout", shutdownGracePeriod)
				_ = zap.S().Sync()
				os.Exit(1)
			})
			err := onShutdown()
			killTimer.Stop()
			if err != nil {
				zap.S().Errorw("Error during shutdown", "error", err)
				return
			}
		}
		zap.S().Info("Shutdown tasks completed. Ready to exit.")
		os.Exit(0)
	}(gs, onShutdown)

	return gs
}

func (gs *gracefulShutdown) ShuttingDown() bool {
	select {
	case <-gs.shuttingDown:
		// Put the value back, in case it's checked again later during shutdown.
		gs.shuttingDown <- true
		return true
	default:
		return false
	}
}

func (gs *gracefulShutdown) Shutdown() {
	// Only send a SIGTERM signal if we are not already shutting down.
	if !gs.ShuttingDown() {
		gs.quit <- syscall.SIGTERM
	}
}

func (gs *gracefulShutdown) Wait() {
	gs.wg.Wait()
}
