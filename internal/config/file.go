package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values, so the file only needs the settings it
// changes. Unknown keys are rejected to catch typos early.
//
//	directory: /Volumes/card/DCIM
//	output: /Volumes/work/graded
//	suffix: _graded
//	target: rec709
//	timeout: 2h
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}
