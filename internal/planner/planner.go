package planner

import (
	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/lut"
)

// BuildPlan assembles the FilePlan for one job. Encoder flags come from
// cfg and are identical for every file; only the LUT stage varies.
func BuildPlan(cfg *config.Config, input, output string, p color.Profile, a lut.Assignment) *FilePlan {
	return &FilePlan{
		InputPath:    input,
		OutputPath:   output,
		Profile:      p,
		LUT:          a,
		Target:       cfg.Target,
		HWAccel:      cfg.HWAccel,
		VideoFilters: BuildVideoFilter(cfg.Target, a),
		VideoOpts: []string{
			"-c:v", cfg.VideoEncoder,
			"-b:v", cfg.VideoBitrate,
			"-maxrate", cfg.MaxRate,
			"-bufsize", cfg.BufSize,
			"-pix_fmt", cfg.PixFmt,
			"-tag:v", cfg.CodecTag,
		},
		ColorOpts:     BuildColorOpts(cfg.Target),
		ContainerOpts: []string{"-movflags", "+faststart"},
		AudioOpts:     []string{"-c:a", "copy"},
	}
}
