package lut

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CubeHeader is the metadata of an Adobe/Resolve .cube file.
type CubeHeader struct {
	Title     string
	Size      int // LUT_3D_SIZE
	DomainMin [3]float64
	DomainMax [3]float64
	Entries   int // data rows found
}

// Complete reports whether the file carries Size³ data rows.
func (h CubeHeader) Complete() bool {
	return h.Size > 0 && h.Entries == h.Size*h.Size*h.Size
}

// Errors returned by [ReadCubeHeader].
var (
	ErrNot3D   = errors.New("not a 3D LUT")
	ErrNoSize  = errors.New("missing LUT_3D_SIZE")
	ErrBadLine = errors.New("malformed cube line")
)

// ReadCubeHeader parses path as a .cube file, returning its keywords and
// the number of data rows.
func ReadCubeHeader(path string) (CubeHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return CubeHeader{}, err
	}
	defer f.Close()

	h := CubeHeader{DomainMax: [3]float64{1, 1, 1}}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.Fields(line)[0]
		rest := strings.TrimSpace(line[len(key):])
		switch key {
		case "TITLE":
			h.Title = strings.Trim(rest, `"`)
		case "LUT_3D_SIZE":
			n, err := strconv.Atoi(rest)
			if err != nil || n < 2 {
				return h, fmt.Errorf("%s:%d: %w: LUT_3D_SIZE %q", path, lineNo, ErrBadLine, rest)
			}
			h.Size = n
		case "LUT_1D_SIZE":
			return h, fmt.Errorf("%s: %w", path, ErrNot3D)
		case "DOMAIN_MIN", "DOMAIN_MAX":
			v, err := triple(rest)
			if err != nil {
				return h, fmt.Errorf("%s:%d: %w: %s", path, lineNo, ErrBadLine, key)
			}
			if key == "DOMAIN_MIN" {
				h.DomainMin = v
			} else {
				h.DomainMax = v
			}
		case "LUT_3D_INPUT_RANGE":
			// Resolve extension; the domain keywords cover the same ground.
		default:
			if _, err := triple(line); err != nil {
				return h, fmt.Errorf("%s:%d: %w", path, lineNo, ErrBadLine)
			}
			if h.Size == 0 {
				return h, fmt.Errorf("%s: %w", path, ErrNoSize)
			}
			h.Entries++
		}
	}
	if err := sc.Err(); err != nil {
		return h, err
	}
	if h.Size == 0 {
		return h, fmt.Errorf("%s: %w", path, ErrNoSize)
	}
	return h, nil
}

func triple(s string) ([3]float64, error) {
	var out [3]float64
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return out, ErrBadLine
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
