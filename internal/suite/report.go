package suite

import (
	"time"

	"github.com/roach88/linecheck/internal/matcher"
)

// Status is the outcome of one case variant.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// Outcome is the result of checking one case under one variant.
type Outcome struct {
	// Seq is the outcome's 1-based position in the report.
	Seq int `json:"seq"`

	Case    string `json:"case"`
	Variant string `json:"variant"`
	Fixture string `json:"fixture"`
	Status  Status `json:"status"`

	// FixtureDigest is the content hash of the fixture as checked. Empty
	// when the fixture could not be read.
	FixtureDigest string `json:"fixture_digest,omitempty"`

	// Reason is the one-line failure or error summary. Empty on pass.
	Reason string `json:"reason,omitempty"`

	// Failure is set for StatusFail.
	Failure *matcher.Failure `json:"failure,omitempty"`

	// Detail is the rendered failure report or the full error text.
	Detail string `json:"detail,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Report is the result of one suite run.
type Report struct {
	RunID     string        `json:"run_id"`
	Suite     string        `json:"suite"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Outcomes  []Outcome     `json:"outcomes"`

	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// OK reports whether every outcome passed.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Total is the number of outcomes.
func (r *Report) Total() int {
	return len(r.Outcomes)
}

func (r *Report) tally() {
	r.Passed, r.Failed, r.Errored = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPass:
			r.Passed++
		case StatusFail:
			r.Failed++
		default:
			r.Errored++
		}
	}
}
