// Package planner turns a classified job into a FilePlan: the video filter
// graph, color metadata and fixed encoder policy that the ffmpeg package
// lays out as arguments.
package planner

import (
	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/lut"
)

// FilePlan holds every per-file decision needed to build one ffmpeg
// command. It is produced by BuildPlan and consumed by ffmpeg.Build.
type FilePlan struct {
	InputPath  string
	OutputPath string

	Profile color.Profile
	LUT     lut.Assignment
	Target  config.Target

	HWAccel      string   // -hwaccel value; empty disables
	VideoFilters string   // complete -vf graph
	VideoOpts    []string // -c:v, bitrate, pix_fmt and tag flags
	ColorOpts    []string // -color_primaries, -color_trc, -colorspace pairs

	ContainerOpts []string // e.g. -movflags +faststart
	AudioOpts     []string // e.g. -c:a copy
}
