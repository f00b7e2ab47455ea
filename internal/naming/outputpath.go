// Package naming derives output file paths for converted clips and keeps
// two inputs from claiming the same output within one run.
package naming

import (
	"path/filepath"
	"strings"
)

// OutputExt is the container extension of every converted file.
const OutputExt = ".mp4"

// OutputPath returns <outDir>/<input stem><suffix>.mp4. The input's own
// extension is dropped, so clip.MOV and clip.mp4 both map to clip<suffix>.mp4.
func OutputPath(input, outDir, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+suffix+OutputExt)
}

// HasSuffix reports whether the stem of path already ends with suffix,
// optionally followed by a collision marker (" - dup2"), meaning the file is
// itself a conversion output. An empty suffix never matches.
func HasSuffix(path, suffix string) bool {
	if suffix == "" {
		return false
	}
	base := filepath.Base(path)
	stem := trimDupMarker(strings.TrimSuffix(base, filepath.Ext(base)))
	return strings.HasSuffix(stem, suffix)
}

// ArgPath returns path in a form a command line cannot mistake for an
// option: relative paths starting with "-" get a "./" prefix.
func ArgPath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "." + string(filepath.Separator) + path
	}
	return path
}

// trimDupMarker drops a trailing " - dupN" written by [CollisionResolver].
func trimDupMarker(stem string) string {
	i := strings.LastIndex(stem, dupMarker)
	if i < 0 {
		return stem
	}
	n := stem[i+len(dupMarker):]
	if n == "" {
		return stem
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			return stem
		}
	}
	return stem[:i]
}
