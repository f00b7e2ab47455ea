package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe("succeeded", "dlogm", true, 2000, 1000, 90*time.Second, 1.8)
	r.Observe("succeeded", "hlg", true, 500, 400, 30*time.Second, 2.1)
	r.Observe("failed", "unknown", false, 0, 0, 0, 0)
	r.Observe("skipped", "unknown", false, 100, 0, 0, 0)
	r.Finish(time.Unix(1760000000, 0))

	path := filepath.Join(t.TempDir(), "lutconv.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		`lutconv_conversions_total{outcome="succeeded",profile="dlogm"} 1`,
		`lutconv_conversions_total{outcome="failed",profile="unknown"} 1`,
		`lutconv_conversions_total{outcome="skipped",profile="unknown"} 1`,
		"lutconv_input_bytes_total 2500",
		"lutconv_output_bytes_total 1400",
		"lutconv_encode_duration_seconds_count 2",
		"lutconv_last_encode_speed 2.1",
		"lutconv_run_timestamp_seconds 1.76e+09",
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in\n%s", want, text)
	}
}

func TestRecorderGather(t *testing.T) {
	r := NewRecorder()
	r.Observe("succeeded", "rec709", true, 1, 1, time.Second, 0)
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["lutconv_conversions_total"])
	assert.True(t, names["lutconv_encode_duration_seconds"])
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Observe("failed", "unknown", false, 0, 0, 0, 0)
	r.Finish(time.Now())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
