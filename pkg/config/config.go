// Package config loads host configuration for the baila command.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the per-project configuration file.
const ProjectFile = ".baila.yaml"

// ColorMode controls coloured terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// TraceFormat selects how trace events are written.
type TraceFormat string

const (
	TraceOff  TraceFormat = "off"
	TraceJSON TraceFormat = "json"
	TraceText TraceFormat = "text"
)

// Config is the resolved host configuration.
type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path      string
	Color     ColorMode
	TypeCheck bool
	// History is the REPL history file; empty disables history.
	History       string
	Prompt        string
	Trace         TraceFormat
	MaxCallDepth  int
	MaxIterations int64
}

// file mirrors the YAML document. Pointer fields distinguish an absent key
// from its zero value.
type file struct {
	Color     string  `yaml:"color"`
	TypeCheck *bool   `yaml:"typecheck"`
	History   *string `yaml:"history"`
	Prompt    string  `yaml:"prompt"`
	Trace     string  `yaml:"trace"`
	Limits    struct {
		MaxCallDepth  int   `yaml:"maxCallDepth"`
		MaxIterations int64 `yaml:"maxIterations"`
	} `yaml:"limits"`
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	b.WriteString(e.Path)
	b.WriteString(" is invalid:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{
		Color:     ColorAuto,
		TypeCheck: true,
		Prompt:    "==> ",
		Trace:     TraceOff,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.History = filepath.Join(home, ".baila", "history")
	}
	return cfg
}

// Load reads the host configuration. Precedence: project
// (<projectDir>/.baila.yaml) → user (~/.baila/config.yaml) → defaults.
// Missing files are skipped; a malformed one is an error.
func Load(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".baila", "config.yaml"))
	}
	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile reads one configuration file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var raw file
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg, err := raw.resolve(filepath.Dir(path))
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// resolve applies raw over the defaults. A relative history path is taken
// relative to dir.
func (raw *file) resolve(dir string) (*Config, error) {
	cfg := Default()
	var errs ValidationError

	switch mode := ColorMode(raw.Color); mode {
	case "":
	case ColorAuto, ColorAlways, ColorNever:
		cfg.Color = mode
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("color must be auto, always or never, got %q", raw.Color))
	}

	switch format := TraceFormat(raw.Trace); format {
	case "":
	case TraceOff, TraceJSON, TraceText:
		cfg.Trace = format
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("trace must be off, json or text, got %q", raw.Trace))
	}

	if raw.TypeCheck != nil {
		cfg.TypeCheck = *raw.TypeCheck
	}
	if raw.History != nil {
		cfg.History = expandPath(*raw.History, dir)
	}
	if raw.Prompt != "" {
		cfg.Prompt = raw.Prompt
	}

	if raw.Limits.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "limits.maxCallDepth must not be negative")
	}
	if raw.Limits.MaxIterations < 0 {
		errs.Issues = append(errs.Issues, "limits.maxIterations must not be negative")
	}
	cfg.MaxCallDepth = raw.Limits.MaxCallDepth
	cfg.MaxIterations = raw.Limits.MaxIterations

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

func expandPath(p, dir string) string {
	switch {
	case p == "":
		return ""
	case p == "~" || strings.HasPrefix(p, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		return p
	case filepath.IsAbs(p):
		return p
	}
	return filepath.Join(dir, p)
}

// UseColor reports whether output should be coloured, given whether it goes
// to a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return terminal
}
