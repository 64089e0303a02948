// Package latency wraps HdrHistogram-go into the engine's
// dequeue-to-dispatch latency collector — the "latency-histogram
// collection" external collaborator that sits outside the matching core
// and never touches book state, only timestamps.
package latency

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

// Recorder accumulates command dequeue-to-dispatch latencies into an HDR
// histogram. A mutex guards the histogram, so Record, Snapshot and Reset
// are safe to call from several goroutines at once.
type Recorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewRecorder constructs a Recorder spanning [1ns, maxValue] nanoseconds
// at the given number of significant decimal digits (HdrHistogram's
// usual 1-5 range; 3 is a reasonable default for latency work).
func NewRecorder(maxValue int64, sigFigs int) *Recorder {
	return &Recorder{hist: hdrhistogram.New(1, maxValue, sigFigs)}
}

// Record records the latency between a command leaving the ring and its
// terminal event being emitted.
func (r *Recorder) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.hist.RecordValue(d.Nanoseconds())
}

// Snapshot is a point-in-time read of the standard percentiles, suitable
// for a periodic log line or an end-of-run report.
type Snapshot struct {
	Count  int64
	Min    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
	P999   time.Duration
	Max    time.Duration
}

// Snapshot takes a consistent read of the histogram's current state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Count: r.hist.TotalCount(),
		Min:   time.Duration(r.hist.Min()),
		Mean:  time.Duration(int64(r.hist.Mean())),
		P50:   time.Duration(r.hist.ValueAtQuantile(50)),
		P90:   time.Duration(r.hist.ValueAtQuantile(90)),
		P99:   time.Duration(r.hist.ValueAtQuantile(99)),
		P999:  time.Duration(r.hist.ValueAtQuantile(99.9)),
		Max:   time.Duration(r.hist.Max()),
	}
}

// Reset clears all recorded values, starting a fresh measurement window.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist.Reset()
}
