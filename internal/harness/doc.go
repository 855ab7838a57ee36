// Package harness verifies one fixture for one variant.
//
// A verification walks a fixed sequence of phases:
//
//	Idle -> Extracting -> Running -> Matching -> Pass | Fail
//
// Extracting loads the fixture and parses its directives. Running launches the
// tool under test with the fixture path substituted into its arguments, or is
// skipped when the caller supplies pre-captured output. Matching checks the
// exit policy and then the output against the active variant's directives.
//
// Directive parse errors and subprocess errors abort the verification and
// are returned as errors. Mismatches are not errors: they produce a Result in
// PhaseFail that carries the first matcher.Failure.
//
// # Usage
//
//	res, err := harness.Verify(ctx, harness.Request{
//	    FixturePath: "test/attr/attr_ibaction_ios.swift",
//	    Variant:     "ios",
//	    Invocation:  &runner.Invocation{Tool: "swiftc", Args: []string{"-parse", "%s"}},
//	    ExitPolicy:  runner.ExitFailure,
//	    Policy:      matcher.DefaultPolicy(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res.Phase == harness.PhaseFail {
//	    harness.RenderFailure(os.Stderr, res)
//	}
package harness
