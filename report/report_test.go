package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	var samples []Sample
	for i := 1; i <= 100; i++ {
		samples = append(samples, Sample{
			Index:   i - 1,
			Type:    "index",
			Latency: time.Duration(i) * time.Millisecond,
			Elapsed: time.Duration(i) * 10 * time.Millisecond,
		})
	}
	samples = append(samples, Sample{Index: 100, Type: "send", Err: errors.New("boom"), Elapsed: 2 * time.Second})

	s := Summarize(samples)
	assert.Equal(t, 101, s.Operations)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, 50*time.Millisecond+500*time.Microsecond, s.Mean)
	assert.Equal(t, 50*time.Millisecond, s.P50)
	assert.Equal(t, 99*time.Millisecond, s.P99)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.InDelta(t, 50.0, s.Throughput, 0.001)
	assert.Contains(t, s.String(), "ops=101 failed=1")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)

	s = Summarize([]Sample{{Err: errors.New("x")}})
	assert.Equal(t, 1, s.Failures)
	assert.Zero(t, s.Mean)
}

func TestWriteCharts(t *testing.T) {
	dir := t.TempDir()
	samples := []Sample{
		{Index: 0, Latency: 2 * time.Millisecond, Elapsed: 10 * time.Millisecond},
		{Index: 1, Latency: 3 * time.Millisecond, Elapsed: 20 * time.Millisecond},
		{Index: 2, Err: errors.New("skip"), Elapsed: 25 * time.Millisecond},
	}

	require.NoError(t, WriteCharts(dir, samples))
	for _, name := range []string{"latency.png", "throughput.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
