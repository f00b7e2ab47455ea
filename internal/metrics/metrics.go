// Package metrics holds the run's Prometheus collectors on a private
// registry and writes them out in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns one registry per run. A nil *Recorder ignores all calls.
type Recorder struct {
	reg *prometheus.Registry

	conversions  *prometheus.CounterVec
	inputBytes   prometheus.Counter
	outputBytes  prometheus.Counter
	encodeTime   prometheus.Histogram
	lastSpeed    prometheus.Gauge
	runTimestamp prometheus.Gauge
}

// NewRecorder registers the lutconv collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lutconv_conversions_total",
				Help: "Files processed, by outcome and detected source profile",
			},
			[]string{"outcome", "profile"},
		),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lutconv_input_bytes_total",
			Help: "Bytes read from successfully converted inputs",
		}),
		outputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lutconv_output_bytes_total",
			Help: "Bytes written to converted outputs",
		}),
		encodeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lutconv_encode_duration_seconds",
			Help:    "Wall-clock duration of ffmpeg encodes",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 3600, 7200},
		}),
		lastSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lutconv_last_encode_speed",
			Help: "Last speed multiplier reported by ffmpeg",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lutconv_run_timestamp_seconds",
			Help: "Unix time at which the run finished",
		}),
	}
	r.reg.MustRegister(r.conversions, r.inputBytes, r.outputBytes, r.encodeTime, r.lastSpeed, r.runTimestamp)
	return r
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observe records one job outcome. Bytes, duration and speed are only
// counted when encoded is true.
func (r *Recorder) Observe(outcome, profile string, encoded bool, in, out int64, elapsed time.Duration, speed float64) {
	if r == nil {
		return
	}
	r.conversions.WithLabelValues(outcome, profile).Inc()
	if !encoded {
		return
	}
	r.inputBytes.Add(float64(in))
	r.outputBytes.Add(float64(out))
	r.encodeTime.Observe(elapsed.Seconds())
	if speed > 0 {
		r.lastSpeed.Set(speed)
	}
}

// Finish stamps the run completion time.
func (r *Recorder) Finish(t time.Time) {
	if r == nil {
		return
	}
	r.runTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile writes every collector to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
