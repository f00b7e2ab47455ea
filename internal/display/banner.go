// Package display holds pure formatting helpers (sizes, durations, bars)
// and the console banner and separators.
package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/lutconv/internal/term"
)

// RuleWidth is the width of banners and separators.
const RuleWidth = 61

// Banner returns the startup banner: a double rule, the centered title and
// another double rule, colored when colors are enabled.
func Banner(title string) string {
	rule := Rule("═")
	return rule + term.Magenta + center(title, RuleWidth) + term.NC + "\n" + rule
}

// Rule returns one colored line of RuleWidth repetitions of ch.
func Rule(ch string) string {
	return term.Magenta + strings.Repeat(ch, RuleWidth) + term.NC + "\n"
}

// OverallWidth is the cell count of the batch progress bar.
const OverallWidth = 50

// Overall returns the batch progress line "Overall: [bar] pct% (current/total)".
func Overall(current, total int) string {
	pct := 0
	if total > 0 {
		pct = min(max(current, 0)*100/total, 100)
	}
	return fmt.Sprintf("%sOverall:%s [%s] %s%d%%%s (%s%d/%d%s)\n",
		term.Blue, term.NC, Bar(current, total, OverallWidth, "█", "░"),
		term.Green, pct, term.NC, term.Cyan, current, total, term.NC)
}

// center pads s with spaces to width, placing it in the middle.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
