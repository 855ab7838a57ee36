package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/linecheck/internal/diagline"
	"github.com/roach88/linecheck/internal/directive"
	"github.com/roach88/linecheck/internal/fixture"
	"github.com/roach88/linecheck/internal/matcher"
	"github.com/roach88/linecheck/internal/runner"
)

// Request validation errors.
var (
	ErrNoVariant = errors.New("no variant selected")
	ErrNoInput   = errors.New("neither a tool invocation nor captured output given")
)

type options struct {
	logger   *zap.Logger
	clock    func() time.Time
	executor *runner.Executor
}

// Option configures Verify.
type Option func(*options)

// WithLogger logs phase transitions and tool launches. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now for measuring durations.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithExecutor runs the tool with e instead of a default executor.
func WithExecutor(e *runner.Executor) Option {
	return func(o *options) {
		if e != nil {
			o.executor = e
		}
	}
}

// verification carries the state of one Verify call.
type verification struct {
	req   Request
	opts  options
	log   *zap.Logger
	phase Phase
}

func (v *verification) enter(p Phase) {
	v.log.Debug("phase", zap.Stringer("from", v.phase), zap.Stringer("to", p))
	v.phase = p
}

// Verify runs one fixture through extraction, the tool and the matcher.
//
// It returns an error for invalid requests, unreadable fixtures, directive
// parse errors (*directive.ParseError) and failed tool runs
// (*runner.SubprocessError). Every other outcome is a Result.
func Verify(ctx context.Context, req Request, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop(), clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.executor == nil {
		o.executor = &runner.Executor{Logger: o.logger}
	}

	v := &verification{
		req:  req,
		opts: o,
		log:  o.logger.With(zap.String("fixture", req.FixturePath), zap.String("variant", req.Variant)),
	}
	return v.run(ctx)
}

func (v *verification) run(ctx context.Context) (*Result, error) {
	req := v.req
	if req.Variant == "" {
		return nil, ErrNoVariant
	}
	if req.Output == nil && req.Invocation == nil {
		return nil, ErrNoInput
	}
	start := v.opts.clock()

	v.enter(PhaseExtracting)
	f, err := fixture.Load(req.FixturePath)
	if err != nil {
		return nil, err
	}
	all, err := directive.NewExtractor(req.Prefix).Extract(f)
	if err != nil {
		return nil, err
	}
	ds := directive.Select(all, req.Variant)
	match, not := directive.Count(ds)
	v.log.Debug("directives extracted",
		zap.Int("total", len(all)),
		zap.Int("must_match", match),
		zap.Int("must_not_match", not))

	res := &Result{
		Fixture:    req.FixturePath,
		Variant:    req.Variant,
		Directives: ds,
		Source:     f,
	}

	var raw []byte
	if req.Output != nil {
		raw, err = io.ReadAll(req.Output)
		if err != nil {
			return nil, fmt.Errorf("reading captured output: %w", err)
		}
	} else {
		v.enter(PhaseRunning)
		inv := *req.Invocation
		inv.Args = runner.Expand(inv.Args, runner.Substitutions{Fixture: req.FixturePath, Variant: req.Variant})
		out, err := v.opts.executor.Run(ctx, inv)
		if err != nil {
			return nil, err
		}
		raw = out.Combined
		res.Ran = true
		res.ExitCode = out.ExitCode
	}

	v.enter(PhaseMatching)
	res.Lines = diagline.Parse(raw)
	if res.Ran && !req.ExitPolicy.Allows(res.ExitCode) {
		res.Failure = &matcher.Failure{Kind: matcher.KindExitStatus, Detail: req.ExitPolicy.Describe(res.ExitCode)}
	} else {
		res.Failure = matcher.Match(ds, res.Lines, req.Policy)
	}

	if res.Failure != nil {
		v.enter(PhaseFail)
		v.log.Debug("verification failed", zap.String("kind", string(res.Failure.Kind)))
	} else {
		v.enter(PhasePass)
	}
	res.Phase = v.phase
	res.Duration = v.opts.clock().Sub(start)
	return res, nil
}
