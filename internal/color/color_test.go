package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name                       string
		space, primaries, transfer string
		want                       Profile
	}{
		{"iphone hlg", "bt2020nc", "bt2020", "arib-std-b67", HLG},
		{"hlg transfer only", "", "", "arib-std-b67", HLG},
		{"hlg named transfer", "", "", "HLG", HLG},
		{"hlg wins over dlog space", "dlogm", "bt709", "arib-std-b67", HLG},
		{"dji bt709 untagged transfer", "bt709", "bt709", "", DLogM},
		{"dji placeholder transfer", "bt709", "bt709", "unknown", DLogM},
		{"explicit dlogm space", "D-Log M", "", "", DLogM},
		{"explicit dlog transfer", "", "", "dlog", DLogM},
		{"rec709 full", "bt709", "bt709", "bt709", Rec709},
		{"rec709 srgb transfer", "bt709", "bt709", "iec61966-2-1", Rec709},
		{"rec709 upper case", " BT709 ", "BT709", "BT709", Rec709},
		{"all empty", "", "", "", Unknown},
		{"all unspecified", "unspecified", "unspecified", "unspecified", Unknown},
		{"pq hdr10", "bt2020nc", "bt2020", "smpte2084", Unknown},
		{"partial 709", "bt709", "", "bt709", Unknown},
		{"bt601", "smpte170m", "smpte170m", "smpte170m", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.space, tt.primaries, tt.transfer))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	inputs := [][3]string{
		{"bt709", "bt709", ""},
		{"bt2020nc", "bt2020", "arib-std-b67"},
		{"", "", ""},
		{"garbage", "\x00", "???"},
	}
	for _, in := range inputs {
		first := Classify(in[0], in[1], in[2])
		for range 5 {
			assert.Equal(t, first, Classify(in[0], in[1], in[2]), "input %q", in)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "", NormalizeTag("unknown"))
	assert.Equal(t, "", NormalizeTag(" Unspecified "))
	assert.Equal(t, "", NormalizeTag("reserved"))
	assert.Equal(t, "bt709", NormalizeTag(" BT709\n"))
	assert.Equal(t, "arib-std-b67", NormalizeTag("arib-std-b67"))
}

func TestProfileString(t *testing.T) {
	assert.Equal(t, "dlogm", DLogM.String())
	assert.Equal(t, "hlg", HLG.String())
	assert.Equal(t, "rec709", Rec709.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Profile(42).String())
}
