package harness

import (
	"io"
	"time"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/fixture"
	"github.com/roach88/linecheck/internal/matcher"
	"github.com/roach88/linecheck/internal/runner"
)

// Phase is a step of a verification.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExtracting
	PhaseRunning
	PhaseMatching
	PhasePass
	PhaseFail
)

var phaseNames = [...]string{
	PhaseIdle:       "idle",
	PhaseExtracting: "extracting",
	PhaseRunning:    "running",
	PhaseMatching:   "matching",
	PhasePass:       "pass",
	PhaseFail:       "fail",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText renders the phase name in JSON output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Request describes one verification.
type Request struct {
	// FixturePath is the annotated source file.
	FixturePath string

	// Variant selects the directives to check. Required.
	Variant string

	// Prefix is the directive prefix. Empty means directive.DefaultPrefix.
	Prefix string

	// Invocation runs the tool under test. %s, %variant and %% in Args are
	// expanded before launch. Ignored when Output is set.
	Invocation *runner.Invocation

	// Output supplies pre-captured tool output instead of running a tool.
	Output io.Reader

	// ExitPolicy constrains the tool's exit status. Only checked when the
	// tool is run.
	ExitPolicy runner.ExitPolicy

	// Policy configures output matching.
	Policy matcher.Policy
}

// Result is the outcome of a verification that reached matching.
type Result struct {
	// Phase is PhasePass or PhaseFail.
	Phase Phase `json:"phase"`

	Fixture string `json:"fixture"`
	Variant string `json:"variant"`

	// Directives are the active variant's directives, in file order.
	Directives []directive.Directive `json:"directives"`

	// Lines is the parsed tool output.
	Lines []diagline.Line `json:"lines"`

	// Failure is the first mismatch. Nil when Phase is PhasePass.
	Failure *matcher.Failure `json:"failure,omitempty"`

	// Ran reports whether a tool was launched. ExitCode is meaningful only
	// then.
	Ran      bool `json:"ran"`
	ExitCode int  `json:"exit_code"`

	Duration time.Duration `json:"duration_ns"`

	// Source is the loaded fixture, used to render failures.
	Source *fixture.Fixture `json:"-"`
}

// Passed reports whether every check held.
func (r *Result) Passed() bool {
	return r.Phase == PhasePass
}
