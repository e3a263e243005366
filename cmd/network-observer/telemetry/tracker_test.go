package telemetry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestTracker_ConcurrentRecording(t *testing.T) {
	tracker := NewRequestTracker()

	const workers = 32
	const requestsPerWorker = 250
	const clientsPerWorker = 8

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < requestsPerWorker; j++ {
				tracker.RecordRequest(fmt.Sprintf("10.0.%d.%d", worker, j%clientsPerWorker))
			}
		}(i)
	}
	wg.Wait()

	requests, uniqueClients := tracker.Snapshot()
	assert.Equal(t, uint64(workers*requestsPerWorker), requests)
	assert.Equal(t, workers*clientsPerWorker, uniqueClients)
}

func TestRequestTracker_RepeatedClientCountedOnce(t *testing.T) {
	tracker := NewRequestTracker()

	for i := 0; i < 100; i++ {
		tracker.RecordRequest("192.168.0.1")
	}
	tracker.RecordRequest("192.168.0.2")

	requests, uniqueClients := tracker.Snapshot()
	assert.Equal(t, uint64(101), requests)
	assert.Equal(t, 2, uniqueClients)
}

func TestRequestTracker_UniqueNeverExceedsTotal(t *testing.T) {
	tracker := NewRequestTracker()

	for i := 0; i < 500; i++ {
		tracker.RecordRequest(fmt.Sprintf("172.16.0.%d", i%97))

		requests, uniqueClients := tracker.Snapshot()
		if uint64(uniqueClients) > requests {
			t.Fatalf("unique clients %d exceeds request count %d after %d requests", uniqueClients, requests, i+1)
		}
	}
}

func TestRequestTracker_CountIsMonotonic(t *testing.T) {
	tracker := NewRequestTracker()

	var previous uint64
	for i := 0; i < 100; i++ {
		tracker.RecordRequest("10.1.1.1")
		requests, _ := tracker.Snapshot()
		assert.Greater(t, requests, previous)
		previous = requests
	}
}
