// Package config loads project settings from linecheck.toml.
//
// A project file is optional. When present it supplies defaults for the
// matching policy, subprocess runs and suite runs; command-line flags still
// take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/matcher"
	"github.com/roach88/linecheck/internal/runner"
)

// FileName is the project file searched for by Discover.
const FileName = "linecheck.toml"

// File mirrors the TOML document.
type File struct {
	Check CheckSection `toml:"check"`
	Run   RunSection   `toml:"run"`
	Suite SuiteSection `toml:"suite"`
}

type CheckSection struct {
	Prefix              string   `toml:"prefix"`
	Exhaustive          *bool    `toml:"exhaustive"`
	UnclaimedSeverities []string `toml:"unclaimed_severities"`
	Normalize           *bool    `toml:"normalize"`
}

type RunSection struct {
	Timeout    string `toml:"timeout"`
	ExpectExit string `toml:"expect_exit"`
}

type SuiteSection struct {
	Jobs    int    `toml:"jobs"`
	History string `toml:"history"`
}

// Config is the resolved project configuration.
type Config struct {
	// Path is the file the configuration was read from. Empty for Default.
	Path string

	Prefix     string
	Policy     matcher.Policy
	Timeout    time.Duration
	ExitPolicy runner.ExitPolicy
	Jobs       int

	// History is the run history database. Relative paths in the file are
	// resolved against the file's directory.
	History string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prefix:     directive.DefaultPrefix,
		Policy:     matcher.DefaultPolicy(),
		ExitPolicy: runner.ExitAny,
		Jobs:       1,
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest project file above startDir, or Default if
// there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and validates a project file. Errors are prefixed with the path.
func Load(path string) (*Config, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg, err := f.resolve(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (f *File) resolve(dir string) (*Config, error) {
	cfg := Default()

	if p := strings.TrimSpace(f.Check.Prefix); p != "" {
		cfg.Prefix = p
	}
	if f.Check.Exhaustive != nil {
		cfg.Policy.Exhaustive = *f.Check.Exhaustive
	}
	if f.Check.Normalize != nil {
		cfg.Policy.Normalize = *f.Check.Normalize
	}
	if len(f.Check.UnclaimedSeverities) > 0 {
		sevs, err := diagline.ParseSeverities(f.Check.UnclaimedSeverities)
		if err != nil {
			return nil, fmt.Errorf("[check].unclaimed_severities: %w", err)
		}
		cfg.Policy.UnclaimedSeverities = sevs
	}

	if f.Run.Timeout != "" {
		d, err := time.ParseDuration(f.Run.Timeout)
		if err != nil {
			return nil, fmt.Errorf("[run].timeout: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("[run].timeout: must not be negative")
		}
		cfg.Timeout = d
	}
	policy, err := runner.ParseExitPolicy(f.Run.ExpectExit)
	if err != nil {
		return nil, fmt.Errorf("[run].expect_exit: %w", err)
	}
	cfg.ExitPolicy = policy

	switch {
	case f.Suite.Jobs < 0:
		return nil, fmt.Errorf("[suite].jobs: must not be negative")
	case f.Suite.Jobs > 0:
		cfg.Jobs = f.Suite.Jobs
	}
	if h := f.Suite.History; h != "" {
		if !filepath.IsAbs(h) {
			h = filepath.Join(dir, h)
		}
		cfg.History = h
	}
	return cfg, nil
}
