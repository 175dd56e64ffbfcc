package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Sample is one executed operation.
type Sample struct {
	Index   int
	Type    string
	Latency time.Duration
	Elapsed time.Duration // time since the run started, taken at completion
	Err     error
}

// Summary aggregates a run.
type Summary struct {
	Operations int
	Failures   int
	Mean       time.Duration
	P50        time.Duration
	P99        time.Duration
	Max        time.Duration
	Throughput float64 // successful operations per second
}

// Summarize computes latency percentiles over successful samples.
func Summarize(samples []Sample) Summary {
	s := Summary{Operations: len(samples)}

	latencies := make([]time.Duration, 0, len(samples))
	var total, span time.Duration
	for _, sample := range samples {
		if sample.Elapsed > span {
			span = sample.Elapsed
		}
		if sample.Err != nil {
			s.Failures++
			continue
		}
		latencies = append(latencies, sample.Latency)
		total += sample.Latency
	}
	if len(latencies) == 0 {
		return s
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	s.Mean = total / time.Duration(len(latencies))
	s.P50 = percentile(latencies, 0.50)
	s.P99 = percentile(latencies, 0.99)
	s.Max = latencies[len(latencies)-1]
	if span > 0 {
		s.Throughput = float64(len(latencies)) / span.Seconds()
	}
	return s
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func (s Summary) String() string {
	return fmt.Sprintf("ops=%s failed=%s mean=%v p50=%v p99=%v max=%v throughput=%.1f/s",
		humanize.Comma(int64(s.Operations)),
		humanize.Comma(int64(s.Failures)),
		s.Mean, s.P50, s.P99, s.Max, s.Throughput)
}

// WriteCharts renders latency.png and throughput.png into dir.
func WriteCharts(dir string, samples []Sample) error {
	var latency, throughput plotter.XYs
	ok := 0
	for _, sample := range samples {
		if sample.Err != nil {
			continue
		}
		ok++
		latency = append(latency, plotter.XY{
			X: float64(sample.Index + 1),
			Y: float64(sample.Latency) / float64(time.Millisecond),
		})
		if secs := sample.Elapsed.Seconds(); secs > 0 {
			throughput = append(throughput, plotter.XY{X: secs, Y: float64(ok) / secs})
		}
	}

	if err := writeChart("Latency", "Operation", "Latency (ms)", latency, filepath.Join(dir, "latency.png")); err != nil {
		return err
	}
	return writeChart("Throughput", "Time (s)", "Throughput (operations/s)", throughput, filepath.Join(dir, "throughput.png"))
}

func writeChart(title, xLabel, yLabel string, points plotter.XYs, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	if len(points) > 0 {
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("chart %s: %w", title, err)
		}
		p.Add(line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
