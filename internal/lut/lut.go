// Package lut picks the 3D LUT file for a source color profile and reads
// .cube headers for diagnostics.
package lut

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/config"
)

// Well-known LUT file names looked up under Selector.Dir.
const (
	DLogMFile = "DJI_DLogM_to_Rec709.cube"
	HLGFile   = "iPhone_HLG2020_to_Rec709.cube"
)

// Source records how an Assignment's path was chosen.
type Source string

const (
	SourceNone     Source = "none"     // no LUT stage
	SourceAuto     Source = "auto"     // well-known file for the profile
	SourceOverride Source = "override" // user-supplied path
	SourceFallback Source = "fallback" // Unknown profile assumed to be D-Log M
)

// Assignment is the LUT chosen for one job. An empty Path means no lut3d stage.
type Assignment struct {
	Profile color.Profile
	Path    string
	Source  Source
}

// HasLUT reports whether the assignment adds a LUT stage.
func (a Assignment) HasLUT() bool { return a.Path != "" }

// MissingError is returned when the resolved LUT file is not on disk.
type MissingError struct {
	Profile color.Profile
	Path    string
	Err     error
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("LUT for %s not found: %s", e.Profile, e.Path)
}

func (e *MissingError) Unwrap() error { return e.Err }

// Selector maps profiles to LUT files.
type Selector struct {
	Dir      string               // directory holding the well-known files
	Override string               // when set, used for every profile
	Unknown  config.UnknownPolicy // what Unknown sources get
}

// NewSelector returns a Selector configured from cfg.
func NewSelector(cfg *config.Config) *Selector {
	return &Selector{Dir: cfg.LUTDir, Override: cfg.LUTOverride, Unknown: cfg.Unknown}
}

// Resolve returns the assignment for p without touching the filesystem.
func (s *Selector) Resolve(p color.Profile) Assignment {
	if s.Override != "" {
		return Assignment{Profile: p, Path: s.Override, Source: SourceOverride}
	}
	switch p {
	case color.DLogM:
		return Assignment{Profile: p, Path: filepath.Join(s.Dir, DLogMFile), Source: SourceAuto}
	case color.HLG:
		return Assignment{Profile: p, Path: filepath.Join(s.Dir, HLGFile), Source: SourceAuto}
	case color.Rec709:
		return Assignment{Profile: p, Source: SourceNone}
	}
	if s.Unknown == config.UnknownNoLUT {
		return Assignment{Profile: p, Source: SourceNone}
	}
	return Assignment{Profile: p, Path: filepath.Join(s.Dir, DLogMFile), Source: SourceFallback}
}

// Select resolves p and checks that the chosen file exists. A missing or
// unreadable file yields a *MissingError.
func (s *Selector) Select(p color.Profile) (Assignment, error) {
	a := s.Resolve(p)
	if !a.HasLUT() {
		return a, nil
	}
	fi, err := os.Stat(a.Path)
	if err != nil {
		return a, &MissingError{Profile: p, Path: a.Path, Err: err}
	}
	if fi.IsDir() {
		return a, &MissingError{Profile: p, Path: a.Path, Err: fs.ErrInvalid}
	}
	return a, nil
}

// IsMissing reports whether err is a *MissingError.
func IsMissing(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}
