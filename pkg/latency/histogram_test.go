package latency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderTracksCountAndPercentiles(t *testing.T) {
	r := NewRecorder(int64(time.Second), 3)

	for _, d := range []time.Duration{10 * time.Microsecond, 20 * time.Microsecond, 30 * time.Microsecond} {
		r.Record(d)
	}

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap.Count)
	assert.GreaterOrEqual(t, snap.Max, snap.P50)
	assert.GreaterOrEqual(t, snap.P99, snap.P50)
}

func TestRecorderResetClearsHistogram(t *testing.T) {
	r := NewRecorder(int64(time.Second), 3)
	r.Record(5 * time.Microsecond)
	require := assert.New(t)
	require.Equal(int64(1), r.Snapshot().Count)

	r.Reset()
	require.Equal(int64(0), r.Snapshot().Count)
}
