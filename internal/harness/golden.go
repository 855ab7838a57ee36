package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the stable part of res as text: fixture, variant, phase,
// exit status, the active directives and the failure report. Durations are
// left out so snapshots compare byte for byte.
func Snapshot(res *Result) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "fixture: %s\n", res.Fixture)
	fmt.Fprintf(&buf, "variant: %s\n", res.Variant)
	fmt.Fprintf(&buf, "phase: %s\n", res.Phase)
	if res.Ran {
		fmt.Fprintf(&buf, "exit: %d\n", res.ExitCode)
	}
	fmt.Fprintf(&buf, "directives: %d\n", len(res.Directives))
	for _, d := range res.Directives {
		fmt.Fprintf(&buf, "  %d:%d %s\n", d.Line, d.Column, d.String())
	}
	if res.Failure != nil {
		buf.WriteString("report:\n")
		if err := RenderFailure(&buf, res); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// AssertGolden compares the snapshot of res against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, res *Result) {
	t.Helper()

	data, err := Snapshot(res)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
