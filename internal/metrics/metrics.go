// Package metrics records per-run counters and timings in a private
// Prometheus registry. splyt is a short-lived CLI, so the registry is
// flushed to a node_exporter textfile at the end of a run instead of being
// scraped.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/forPelevin/splyt/internal/diag"
	"github.com/forPelevin/splyt/internal/observer"
)

const namespace = "splyt"

// Recorder is an observer that turns pipeline events into metrics.
type Recorder struct {
	observer.Nop

	reg *prometheus.Registry
	now func() time.Time

	downloadedBytes prometheus.Counter
	mergeSeconds    prometheus.Histogram
	clipSeconds     prometheus.Histogram
	clips           *prometheus.CounterVec
	runs            *prometheus.CounterVec

	mu         sync.Mutex
	lastBytes  int64
	mergeStart time.Time
	clipStart  map[string]time.Time
}

func New() *Recorder {
	r := &Recorder{
		reg:       prometheus.NewRegistry(),
		now:       time.Now,
		clipStart: make(map[string]time.Time),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written by stream transfers.",
		}),
		mergeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Wall time spent muxing video and audio.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		clipSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clip_duration_seconds",
			Help:      "Wall time spent cutting one clip.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		clips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_total",
			Help:      "Clips attempted, by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "CLI runs, by command and diagnostic code (0 on success).",
		}, []string{"command", "code"}),
	}
	r.reg.MustRegister(r.downloadedBytes, r.mergeSeconds, r.clipSeconds, r.clips, r.runs)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Run records the end of a CLI command.
func (r *Recorder) Run(command string, err error) {
	r.runs.WithLabelValues(command, codeLabel(diag.Code(err, -1))).Inc()
}

// WriteTextfile atomically writes every metric to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

func (r *Recorder) DownloadProgress(transferred, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if delta := transferred - r.lastBytes; delta > 0 {
		r.downloadedBytes.Add(float64(delta))
	}
	r.lastBytes = transferred
}

func (r *Recorder) Downloaded() {
	r.mu.Lock()
	r.lastBytes = 0
	r.mu.Unlock()
}

func (r *Recorder) MergeStart(time.Duration) {
	r.mu.Lock()
	r.mergeStart = r.now()
	r.mu.Unlock()
}

func (r *Recorder) Merged() {
	r.mu.Lock()
	start := r.mergeStart
	r.mu.Unlock()
	if !start.IsZero() {
		r.mergeSeconds.Observe(r.now().Sub(start).Seconds())
	}
}

func (r *Recorder) ClipStart(name string, _ time.Duration) {
	r.mu.Lock()
	r.clipStart[name] = r.now()
	r.mu.Unlock()
}

func (r *Recorder) ClipSaved(name string) { r.clipDone(name, "saved") }

func (r *Recorder) ClipFailed(name string, _ error) { r.clipDone(name, "failed") }

func (r *Recorder) clipDone(name, outcome string) {
	r.mu.Lock()
	start, ok := r.clipStart[name]
	delete(r.clipStart, name)
	r.mu.Unlock()
	if ok {
		r.clipSeconds.Observe(r.now().Sub(start).Seconds())
	}
	r.clips.WithLabelValues(outcome).Inc()
}

func codeLabel(code int) string {
	if code < 0 {
		return "unknown"
	}
	return strconv.Itoa(code)
}
