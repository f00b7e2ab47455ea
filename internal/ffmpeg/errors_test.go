package ffmpeg

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tail []string
		want string
	}{
		{"missing zscale", []string{"[AVFilterGraph @ 0x7f] No such filter: 'zscale'"}, "ffmpeg lacks the zscale filter"},
		{"unknown encoder", []string{"Unknown encoder 'hevc_videotoolbox'"}, "encoder hevc_videotoolbox unavailable"},
		{"videotoolbox session", []string{"[hevc_videotoolbox @ 0x1] Error: cannot create compression session: -12903"}, "hardware encoder unavailable"},
		{"lut unreadable", []string{"[Parsed_lut3d_0 @ 0x1] Unable to open file 'luts/x.cube'"}, "LUT file could not be read"},
		{"disk full", []string{"av_interleaved_write_frame(): No space left on device"}, "disk full"},
		{"bad input", []string{"in.mp4: Invalid data found when processing input"}, "input unreadable"},
		{"moov", []string{"[mov,mp4 @ 0x1] moov atom not found"}, "input unreadable"},
		{"fallback last line", []string{"first", "Conversion failed!", "  "}, "Conversion failed!"},
		{"empty", nil, "no diagnostic output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tail); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeErrorMessage(t *testing.T) {
	e := &EncodeError{ExitCode: 1, Reason: "disk full"}
	if e.Error() != "ffmpeg exited with status 1: disk full" {
		t.Errorf("Error() = %q", e.Error())
	}
}
