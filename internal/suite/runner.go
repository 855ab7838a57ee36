package suite

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/linecheck/internal/harness"
	"github.com/roach88/linecheck/internal/matcher"
	"github.com/roach88/linecheck/internal/runner"
)

// Runner executes suites.
//
// Policy, Prefix, ExitPolicy and Timeout are the project-wide defaults; suite
// defaults and case fields override them.
type Runner struct {
	// Jobs bounds how many verifications run at once. Values below 1 mean 1.
	Jobs int

	// Filter is a path.Match glob on case names. Empty selects every case.
	Filter string

	Policy     matcher.Policy
	Prefix     string
	ExitPolicy runner.ExitPolicy
	Timeout    time.Duration

	Logger   *zap.Logger
	Clock    func() time.Time
	IDs      IDGenerator
	Executor *runner.Executor
}

// job is one case under one variant.
type job struct {
	c       Case
	set     Settings
	variant string
}

// Run verifies every selected case under each of its variants. Verifications
// are isolated from each other: an error in one becomes an error outcome and
// the rest still run. Outcomes are in suite order whatever Jobs is.
//
// Run returns an error only for a bad Filter or a canceled context.
func (r *Runner) Run(ctx context.Context, s *Suite) (*Report, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := r.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}

	jobs, err := r.plan(s)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     ids.Generate(),
		Suite:     s.Name,
		StartedAt: clock(),
		Outcomes:  make([]Outcome, len(jobs)),
	}
	log = log.With(zap.String("suite", s.Name), zap.String("run_id", report.RunID))
	log.Debug("suite started", zap.Int("jobs", len(jobs)))

	limit := r.Jobs
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// Indices are unique per goroutine, so no lock is needed.
			report.Outcomes[i] = r.verify(gctx, s, j, log, clock)
			report.Outcomes[i].Seq = i + 1
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = clock().Sub(report.StartedAt)
	report.tally()
	log.Debug("suite finished",
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Int("errored", report.Errored))
	return report, nil
}

// plan expands the selected cases into jobs, in suite order.
func (r *Runner) plan(s *Suite) ([]job, error) {
	if r.Filter != "" {
		if _, err := path.Match(r.Filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", r.Filter, err)
		}
	}

	var jobs []job
	for i, c := range s.Cases {
		if r.Filter != "" {
			if ok, _ := path.Match(r.Filter, c.Name); !ok {
				continue
			}
		}
		set, err := s.Settings(c)
		if err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
		for _, v := range c.Variants {
			jobs = append(jobs, job{c: c, set: set, variant: v})
		}
	}
	return jobs, nil
}

func (r *Runner) verify(ctx context.Context, s *Suite, j job, log *zap.Logger, clock func() time.Time) Outcome {
	fixturePath := s.resolve(j.c.Fixture)
	out := Outcome{Case: j.c.Name, Variant: j.variant, Fixture: fixturePath}

	req, closeOutput, err := r.request(s, j, fixturePath)
	if err != nil {
		out.Status = StatusError
		out.Reason = err.Error()
		out.Detail = err.Error()
		return out
	}
	defer closeOutput()

	res, err := harness.Verify(ctx, req,
		harness.WithLogger(log.With(zap.String("case", j.c.Name))),
		harness.WithClock(clock),
		harness.WithExecutor(r.Executor))
	if err != nil {
		log.Debug("case errored", zap.String("case", j.c.Name), zap.String("variant", j.variant), zap.Error(err))
		out.Status = StatusError
		out.Reason = err.Error()
		out.Detail = err.Error()
		return out
	}

	out.Duration = res.Duration
	out.FixtureDigest = res.Source.Digest()
	if res.Passed() {
		out.Status = StatusPass
		return out
	}

	out.Status = StatusFail
	out.Failure = res.Failure
	out.Reason = res.Failure.Reason()
	var buf bytes.Buffer
	if err := harness.RenderFailure(&buf, res); err == nil {
		out.Detail = buf.String()
	}
	return out
}

// request builds the harness request for a job. The returned func closes the
// captured-output file, if one was opened.
func (r *Runner) request(s *Suite, j job, fixturePath string) (harness.Request, func(), error) {
	set := j.set

	policy := r.Policy
	if set.Exhaustive != nil {
		policy.Exhaustive = *set.Exhaustive
	}
	if set.UnclaimedSeverities != nil {
		policy.UnclaimedSeverities = set.UnclaimedSeverities
	}

	req := harness.Request{
		FixturePath: fixturePath,
		Variant:     j.variant,
		Prefix:      pick(set.Prefix, r.Prefix),
		ExitPolicy:  r.ExitPolicy,
		Policy:      policy,
	}
	if j.c.ExpectExit != "" || s.Defaults.ExpectExit != "" {
		req.ExitPolicy = set.ExpectExit
	}

	if j.c.Output != "" {
		name := runner.Expand([]string{j.c.Output}, runner.Substitutions{Fixture: fixturePath, Variant: j.variant})[0]
		f, err := os.Open(s.resolve(name))
		if err != nil {
			return req, nil, fmt.Errorf("failed to open captured output: %w", err)
		}
		req.Output = f
		return req, func() { f.Close() }, nil
	}

	timeout := r.Timeout
	if set.Timeout > 0 {
		timeout = set.Timeout
	}
	req.Invocation = &runner.Invocation{
		Tool:    set.Tool,
		Args:    set.Args,
		Env:     set.Env,
		Timeout: timeout,
	}
	return req, func() {}, nil
}
