package planner

import (
	"strings"

	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/lut"
)

// Target conversion stages. HLG output converts into BT.2020 and relabels
// the transfer; Rec709 output stays in BT.709.
const (
	hlgChain    = "zscale=primaries=bt2020:matrix=bt2020nc,format=p010le,zscale=transfer=arib-std-b67"
	rec709Chain = "zscale=primaries=bt709:matrix=bt709,format=p010le"
)

// BuildVideoFilter returns the full -vf graph: an optional lut3d stage
// followed by the target conversion chain.
func BuildVideoFilter(target config.Target, a lut.Assignment) string {
	var stages []string
	if a.HasLUT() {
		stages = append(stages, "lut3d=file="+EscapeFilterValue(a.Path))
	}
	if target == config.TargetRec709 {
		stages = append(stages, rec709Chain)
	} else {
		stages = append(stages, hlgChain)
	}
	return strings.Join(stages, ",")
}

// BuildColorOpts returns the output color tags for target.
func BuildColorOpts(target config.Target) []string {
	if target == config.TargetRec709 {
		return []string{"-color_primaries", "bt709", "-color_trc", "bt709", "-colorspace", "bt709"}
	}
	return []string{"-color_primaries", "bt2020", "-color_trc", "arib-std-b67", "-colorspace", "bt2020nc"}
}

// EscapeFilterValue escapes s for use as a filter option value inside a
// -vf graph. The option parser sees \ : and ' backslash-escaped. The graph
// parser then sees the result single-quoted, with each embedded quote
// written as '\''.
func EscapeFilterValue(s string) string {
	var opt strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ':', '\'':
			opt.WriteByte('\\')
		}
		opt.WriteRune(r)
	}
	return "'" + strings.ReplaceAll(opt.String(), "'", `'\''`) + "'"
}
