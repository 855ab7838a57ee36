// Package suite runs many fixture verifications described by one file.
//
// A suite file lists cases. Each case names a fixture, the variants to check
// it under, and either the tool to run or a file of pre-captured output:
//
//	name: attr
//	defaults:
//	  tool: swiftc
//	  args: ["-parse", "%s"]
//	  expect_exit: failure
//	cases:
//	  - name: ibaction
//	    fixture: attr/attr_ibaction_ios.swift
//	    variants: [ios, macosx]
//
// Suites are written in YAML or CUE. CUE suites are unified with the #Suite
// schema before decoding, so type errors carry CUE source positions.
package suite

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/runner"
)

// Suite is a parsed suite file.
type Suite struct {
	// Name identifies the suite in reports and run history.
	Name string `yaml:"name" json:"name"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Defaults apply to every case that does not set the field itself.
	Defaults CaseDefaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	Cases []Case `yaml:"cases" json:"cases"`

	// Path is the file the suite was loaded from. Relative fixture and output
	// paths resolve against its directory.
	Path string `yaml:"-" json:"-"`
}

// CaseDefaults holds the settings a case may inherit.
type CaseDefaults struct {
	Tool    string   `yaml:"tool,omitempty" json:"tool,omitempty"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
	Env     []string `yaml:"env,omitempty" json:"env,omitempty"`
	Prefix  string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Timeout string   `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// ExpectExit is any, success or failure.
	ExpectExit string `yaml:"expect_exit,omitempty" json:"expect_exit,omitempty"`

	// Exhaustive overrides the configured exhaustiveness when set.
	Exhaustive *bool `yaml:"exhaustive,omitempty" json:"exhaustive,omitempty"`

	UnclaimedSeverities []string `yaml:"unclaimed_severities,omitempty" json:"unclaimed_severities,omitempty"`
}

// Case is one fixture checked under one or more variants.
type Case struct {
	Name     string   `yaml:"name" json:"name"`
	Fixture  string   `yaml:"fixture" json:"fixture"`
	Variants []string `yaml:"variants" json:"variants"`

	// Output is a file of pre-captured tool output used instead of running
	// a tool. %s and %variant are expanded, so one case can name a file per
	// variant.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`

	CaseDefaults `yaml:",inline"`
}

// Load reads a suite file. Files ending in .cue are read as CUE; everything
// else as YAML.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var s *Suite
	if filepath.Ext(path) == ".cue" {
		s, err = parseCUE(path, data)
	} else {
		s, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}
	s.Path = path

	if err := validateSuite(s); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return s, nil
}

// parseYAML decodes with strict field validation, so a typo such as
// "variant:" for "variants:" is an error rather than a silently empty list.
func parseYAML(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &s, nil
}

// Dir is the directory relative paths resolve against.
func (s *Suite) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// resolve joins a relative path onto the suite directory.
func (s *Suite) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir(), p)
}

// Settings are a case's effective settings after applying defaults.
type Settings struct {
	Tool       string
	Args       []string
	Env        []string
	Prefix     string
	Timeout    time.Duration
	ExpectExit runner.ExitPolicy

	// Exhaustive is nil when neither the case nor the defaults set it.
	Exhaustive *bool

	UnclaimedSeverities []diagline.Severity
}

// Settings merges c over the suite defaults. Fields left unset in both are
// zero.
func (s *Suite) Settings(c Case) (Settings, error) {
	d := s.Defaults
	var out Settings

	out.Tool = pick(c.Tool, d.Tool)
	out.Args = c.Args
	if out.Args == nil {
		out.Args = d.Args
	}
	out.Env = append(append([]string(nil), d.Env...), c.Env...)
	out.Prefix = pick(c.Prefix, d.Prefix)

	if t := pick(c.Timeout, d.Timeout); t != "" {
		dur, err := time.ParseDuration(t)
		if err != nil || dur < 0 {
			return out, fmt.Errorf("invalid timeout %q", t)
		}
		out.Timeout = dur
	}

	policy, err := runner.ParseExitPolicy(pick(c.ExpectExit, d.ExpectExit))
	if err != nil {
		return out, err
	}
	out.ExpectExit = policy

	out.Exhaustive = c.Exhaustive
	if out.Exhaustive == nil {
		out.Exhaustive = d.Exhaustive
	}

	sevs := c.UnclaimedSeverities
	if sevs == nil {
		sevs = d.UnclaimedSeverities
	}
	if out.UnclaimedSeverities, err = diagline.ParseSeverities(sevs); err != nil {
		return out, err
	}
	return out, nil
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// validateSuite checks required fields and that every case's settings parse.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]int, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if j, dup := seen[c.Name]; dup {
			return fmt.Errorf("cases[%d]: duplicate case name %q (first used by cases[%d])", i, c.Name, j)
		}
		seen[c.Name] = i

		if c.Fixture == "" {
			return fmt.Errorf("cases[%d]: fixture is required", i)
		}
		if _, err := os.Stat(s.resolve(c.Fixture)); os.IsNotExist(err) {
			return fmt.Errorf("cases[%d]: fixture file not found: %s", i, s.resolve(c.Fixture))
		}
		if len(c.Variants) == 0 {
			return fmt.Errorf("cases[%d]: variants list is required and must be non-empty", i)
		}
		for j, v := range c.Variants {
			if v == "" {
				return fmt.Errorf("cases[%d].variants[%d]: variant must be non-empty", i, j)
			}
		}

		set, err := s.Settings(c)
		if err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		switch {
		case c.Output == "" && set.Tool == "":
			return fmt.Errorf("cases[%d]: tool or output is required", i)
		case c.Output != "" && c.Tool != "":
			return fmt.Errorf("cases[%d]: tool and output are mutually exclusive", i)
		}
	}
	return nil
}
