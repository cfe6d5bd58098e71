package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/livetest/internal/schema"
)

// FileName is the configuration file looked up by Find.
const FileName = "livetest.yaml"

// ErrNotFound is returned by Find when no configuration file exists in the
// directory or any of its parents.
var ErrNotFound = errors.New(FileName + " not found")

// Find walks up from startDir until it finds livetest.yaml.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads, schema-validates and parses a configuration file. Unknown keys
// are reported as warnings.
func Load(path string) (*File, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for data already in memory.
func Parse(data []byte) (*File, []string, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw == nil {
		return &File{}, nil, nil
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert config file: %w", err)
	}
	if err := schema.ValidateConfig(doc); err != nil {
		return nil, nil, err
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &f, detectUnknownFields(raw), nil
}

// LoadOptions resolves defaults, then the file at path (if path is not
// empty), then the environment.
func LoadOptions(path string, getenv func(string) string) (Options, []string, error) {
	opts := Defaults()
	var warnings []string
	if path != "" {
		f, w, err := Load(path)
		if err != nil {
			return Options{}, nil, err
		}
		warnings = w
		if err := f.Apply(&opts); err != nil {
			return Options{}, warnings, err
		}
		if opts.BaseDirectory != "" && !filepath.IsAbs(opts.BaseDirectory) {
			opts.BaseDirectory = filepath.Join(filepath.Dir(path), opts.BaseDirectory)
		}
	}
	if err := ApplyEnv(&opts, getenv); err != nil {
		return Options{}, warnings, err
	}
	if err := Validate(opts); err != nil {
		return Options{}, warnings, err
	}
	return opts, warnings, nil
}
