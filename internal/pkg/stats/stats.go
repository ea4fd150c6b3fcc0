// Package stats tracks what the logger has done so far: samples buffered,
// flushes, bytes written, overflows and write errors. The counters feed the
// live table, the /status endpoint and the Prometheus metrics.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulbellamy/ratecounter"
)

type stats struct {
	samplesBuffered atomic.Uint64
	samplesDropped  atomic.Uint64
	overflows       atomic.Uint64
	flushes         atomic.Uint64
	flushErrors     atomic.Uint64
	bytesFlushed    atomic.Uint64
	bufferFill      atomic.Int64
	errorState      atomic.Bool
	sessionFile     atomic.Value
	sampleRate      *ratecounter.RateCounter
}

var (
	globalStats *stats
	doOnce      sync.Once
)

// Init initializes the package. Calling it twice returns
// ErrStatsAlreadyInitialized.
func Init() error {
	var done = false

	doOnce.Do(func() {
		globalStats = &stats{
			sampleRate: ratecounter.NewRateCounter(time.Minute),
		}
		globalStats.sessionFile.Store("")
		initPrometheus()
		done = true
	})

	if !done {
		return ErrStatsAlreadyInitialized
	}

	return nil
}

// SetSession records the current session's file name and index.
func SetSession(name string, index uint64) {
	globalStats.sessionFile.Store(name)
	promStats.sessionIndex.With(promLabels()).Set(float64(index))
}

// GetSessionFile returns the name of the current session file.
func GetSessionFile() string {
	return globalStats.sessionFile.Load().(string)
}

// IncSamplesBuffered counts one sample accepted into the buffer.
func IncSamplesBuffered() {
	globalStats.samplesBuffered.Add(1)
	globalStats.sampleRate.Incr(1)
	promStats.samplesBuffered.With(promLabels()).Inc()
}

// IncSamplesDropped counts one sample lost for good.
func IncSamplesDropped() {
	globalStats.samplesDropped.Add(1)
	promStats.samplesDropped.With(promLabels()).Inc()
}

// IncOverflows counts one rejected append that forced an emergency flush.
func IncOverflows() {
	globalStats.overflows.Add(1)
	promStats.overflows.With(promLabels()).Inc()
}

// IncFlushes counts one successful flush of n bytes.
func IncFlushes(n uint64) {
	globalStats.flushes.Add(1)
	globalStats.bytesFlushed.Add(n)
	promStats.flushes.With(promLabels()).Inc()
	promStats.bytesFlushed.With(promLabels()).Add(float64(n))
}

// IncFlushErrors counts one failed flush.
func IncFlushErrors() {
	globalStats.flushErrors.Add(1)
	promStats.flushErrors.With(promLabels()).Inc()
}

// SetBufferFill records the current buffer fill level in bytes.
func SetBufferFill(n int) {
	globalStats.bufferFill.Store(int64(n))
	promStats.bufferFill.With(promLabels()).Set(float64(n))
}

// SetErrorState raises or clears the error indicator. This is the
// user-visible signal that the last operation failed; it never stops the
// loop.
func SetErrorState(on bool) {
	globalStats.errorState.Store(on)
	if on {
		promStats.errorState.With(promLabels()).Set(1)
	} else {
		promStats.errorState.With(promLabels()).Set(0)
	}
}

// GetErrorState returns the error indicator.
func GetErrorState() bool {
	return globalStats.errorState.Load()
}

// GetMap returns a snapshot of the current stats, used by the live table
// and the /status endpoint.
func GetMap() map[string]interface{} {
	return map[string]interface{}{
		"Session file":     GetSessionFile(),
		"Samples buffered": globalStats.samplesBuffered.Load(),
		"Samples dropped":  globalStats.samplesDropped.Load(),
		"Samples/min":      globalStats.sampleRate.Rate(),
		"Buffer fill":      globalStats.bufferFill.Load(),
		"Overflows":        globalStats.overflows.Load(),
		"Flushes":          globalStats.flushes.Load(),
		"Flush errors":     globalStats.flushErrors.Load(),
		"Bytes flushed":    globalStats.bytesFlushed.Load(),
		"Error state":      globalStats.errorState.Load(),
	}
}
