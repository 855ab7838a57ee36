package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/linecheck/internal/suite"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport creates a report with the given outcomes, tallied.
func createTestReport(id string, started time.Time, outcomes ...suite.Outcome) *suite.Report {
	r := &suite.Report{
		RunID:     id,
		Suite:     "attr",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Outcomes:  outcomes,
	}
	for i := range r.Outcomes {
		r.Outcomes[i].Seq = i + 1
		switch r.Outcomes[i].Status {
		case suite.StatusPass:
			r.Passed++
		case suite.StatusFail:
			r.Failed++
		default:
			r.Errored++
		}
	}
	return r
}

// createTestOutcome creates an outcome with minimal required fields.
func createTestOutcome(caseName, variant string, status suite.Status) suite.Outcome {
	return suite.Outcome{
		Case:     caseName,
		Variant:  variant,
		Fixture:  "attr/" + caseName + ".swift",
		Status:   status,
		Duration: 20 * time.Millisecond,
	}
}

var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
