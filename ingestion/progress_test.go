package ingestion

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 100, time.Nanosecond)

	tracker.Start()
	assert.True(t, tracker.started.Load(), "should be started")

	tracker.Increment(25)
	time.Sleep(time.Millisecond)
	tracker.Increment(75)
	tracker.Tick()

	assert.Equal(t, 100, tracker.Current())
	assert.Greater(t, tracker.Elapsed(), time.Duration(0), "elapsed time should be positive")
	assert.Contains(t, logs.String(), "msg=progress")
	assert.Contains(t, logs.String(), "total=100")
}

func TestProgressTracker_Disabled(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 10, 0)

	tracker.Start()
	tracker.Increment(5)
	tracker.Tick()
	assert.Empty(t, logs.String(), "no periodic reports when disabled")

	tracker.Finish()
	assert.Contains(t, logs.String(), "done=5")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 10, time.Nanosecond)

	tracker.Increment(5)
	tracker.Tick()
	tracker.Finish()
	assert.Equal(t, 0, tracker.Current())
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
	assert.Empty(t, logs.String())
}

func TestProgressTracker_BeyondTotal(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 10, 0)

	tracker.Start()
	tracker.Increment(15)
	tracker.Finish()

	assert.Equal(t, 15, tracker.Current())
	assert.Contains(t, logs.String(), "percent=100")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 0, 0)

	tracker.Start()
	tracker.Finish()
	assert.Contains(t, logs.String(), "total=0")
	assert.Contains(t, logs.String(), "percent=0")
}

func TestProgressTracker_ConcurrentIncrements(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 800, time.Hour)
	tracker.Start()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tracker.Increment(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, tracker.Current())
	assert.Empty(t, logs.String(), "workers never report")

	tracker.Finish()
	assert.Contains(t, logs.String(), "done=800")
}

func TestProgressTracker_TickThrottles(t *testing.T) {
	logger, logs := captureLogger()
	tracker := NewProgressTracker(logger, 10, time.Hour)
	tracker.Start()

	for i := 0; i < 10; i++ {
		tracker.Increment(1)
		tracker.Tick()
	}
	assert.Empty(t, logs.String(), "interval has not elapsed")
}
