// Package color classifies a video stream's color tags into one of the
// source profiles lutconv knows how to convert.
package color

import "strings"

// Profile is the detected source color profile of one input file.
type Profile int

const (
	Unknown Profile = iota
	DLogM
	HLG
	Rec709
)

// String returns the lower-case profile name used in logs and the journal.
func (p Profile) String() string {
	switch p {
	case DLogM:
		return "dlogm"
	case HLG:
		return "hlg"
	case Rec709:
		return "rec709"
	default:
		return "unknown"
	}
}

// NormalizeTag lower-cases and trims an ffprobe color tag. Placeholder
// values ffprobe emits for untagged streams become the empty string.
func NormalizeTag(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	switch t {
	case "unknown", "unspecified", "reserved", "n/a", "und":
		return ""
	}
	return t
}

// sdrTransfers are the transfer characteristics accepted as standard BT.709.
var sdrTransfers = map[string]bool{
	"bt709":        true,
	"bt1361e":      true,
	"iec61966-2-1": true,
	"srgb":         true,
}

// Classify maps the color space, primaries and transfer tags of a stream to
// a Profile. First match wins: HLG transfer, DJI log markers, full BT.709
// tagging, then Unknown. Classify is total: every input yields a Profile.
func Classify(space, primaries, transfer string) Profile {
	space, primaries, transfer = NormalizeTag(space), NormalizeTag(primaries), NormalizeTag(transfer)

	if transfer == "arib-std-b67" || strings.Contains(transfer, "hlg") {
		return HLG
	}
	if isDLog(space) || isDLog(transfer) {
		return DLogM
	}
	// DJI bodies write bt709 primaries but leave the transfer untagged when
	// recording D-Log M.
	if primaries == "bt709" && transfer == "" {
		return DLogM
	}
	if space == "bt709" && primaries == "bt709" && sdrTransfers[transfer] {
		return Rec709
	}
	return Unknown
}

func isDLog(tag string) bool {
	return strings.Contains(tag, "dlog") || strings.Contains(tag, "d-log")
}
