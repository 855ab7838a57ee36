package runner

import "fmt"

// ExitPolicy constrains the tool's exit status.
type ExitPolicy string

const (
	ExitAny     ExitPolicy = "any"
	ExitSuccess ExitPolicy = "success"
	ExitFailure ExitPolicy = "failure"
)

// ParseExitPolicy maps a label to an ExitPolicy. Empty means ExitAny.
func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch ExitPolicy(s) {
	case "", ExitAny:
		return ExitAny, nil
	case ExitSuccess, ExitFailure:
		return ExitPolicy(s), nil
	}
	return "", fmt.Errorf("invalid exit policy %q (must be any, success or failure)", s)
}

// Allows reports whether code satisfies the policy.
func (p ExitPolicy) Allows(code int) bool {
	switch p {
	case ExitSuccess:
		return code == 0
	case ExitFailure:
		return code != 0
	}
	return true
}

// Describe renders the violation for an exit code the policy rejects.
func (p ExitPolicy) Describe(code int) string {
	switch p {
	case ExitSuccess:
		return fmt.Sprintf("tool exited with status %d, expected success", code)
	case ExitFailure:
		return "tool exited with status 0, expected failure"
	}
	return fmt.Sprintf("tool exited with status %d", code)
}

func (p ExitPolicy) String() string {
	if p == "" {
		return string(ExitAny)
	}
	return string(p)
}
