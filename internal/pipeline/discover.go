package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/lutconv/internal/naming"
)

// Supported input extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
}

// Discover lists the MP4/MOV files directly inside dir, sorted
// lexicographically. Subdirectories, dotfiles (including macOS "._"
// resource forks) and files whose stem already ends with suffix are left out.
func Discover(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if naming.HasSuffix(name, suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
