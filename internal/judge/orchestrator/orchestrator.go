// Package orchestrator drives single and batch evaluations: it moves source
// and config documents into sandboxes, runs the harness, and classifies the
// outcome.
package orchestrator

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/metrics"
	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/sandbox"
	appErr "judgemicro/pkg/errors"
	"judgemicro/pkg/utils/logger"
)

const (
	configFileName = "config.json"
	resultFileName = "result.json"
	harnessBinary  = "harness"
	// releaseTimeout bounds sandbox teardown after the caller's context is
	// gone.
	releaseTimeout = 30 * time.Second
	// defaultCallSlack pads the total call deadline beyond the summed
	// compile and execution budgets.
	defaultCallSlack = 60 * time.Second
)

// Config tunes the orchestrator.
type Config struct {
	// WorkDir is the in-sandbox directory holding source, config and
	// results. Must match the sandbox manager's workdir.
	WorkDir string `yaml:"work_dir"`
	// CallSlack is added to the summed per-case compile and execution
	// budgets to form the total call deadline. It covers sandbox
	// acquisition, uploads and result downloads.
	CallSlack time.Duration `yaml:"call_slack"`
}

// SetDefault fills unset fields.
func (c *Config) SetDefault() {
	if c.WorkDir == "" {
		c.WorkDir = "/app"
	}
	if c.CallSlack <= 0 {
		c.CallSlack = defaultCallSlack
	}
}

// Orchestrator owns the evaluate pipelines. Safe for concurrent use; each
// call works on its own sandbox.
type Orchestrator struct {
	mgr sandbox.Manager
	cfg Config
}

// New builds an orchestrator on a sandbox manager.
func New(mgr sandbox.Manager, cfg Config) *Orchestrator {
	cfg.SetDefault()
	return &Orchestrator{mgr: mgr, cfg: cfg}
}

// Evaluate judges one submission. Validation failures and context
// cancellation return errors; everything that happens inside the sandbox
// becomes a verdict. The whole call runs under a total deadline derived from
// the submission's limits; expiry cancels the in-flight exec and the sandbox
// is still released.
func (o *Orchestrator) Evaluate(ctx context.Context, sub model.Submission) (model.Verdict, error) {
	if err := model.ValidateSubmission(sub); err != nil {
		return model.Verdict{}, err
	}

	configDoc, err := codec.EncodeConfig(sub, sub.Case)
	if err != nil {
		return model.Verdict{}, err
	}

	limits := sub.EffectiveLimits()
	ctx, cancel := o.withCallDeadline(ctx, limits.CompileTimeout()+limits.ExecutionTimeout())
	defer cancel()
	start := time.Now()
	h, err := o.mgr.Acquire(ctx, sub.Language, limits)
	if err != nil {
		if ctx.Err() != nil {
			return model.Verdict{}, ctx.Err()
		}
		return model.Verdict{}, err
	}
	defer o.release(h)

	verdict, err := o.runCase(ctx, h, sub, configDoc, false)
	if err != nil {
		return model.Verdict{}, err
	}
	metrics.ObserveEvaluation(string(sub.Language), string(verdict.Status), time.Since(start))
	return verdict, nil
}

// EvaluateBatch judges independent submissions sequentially. Verdict order
// matches submission order. Every submission is validated before any sandbox
// is acquired.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, subs []model.Submission) ([]model.Verdict, error) {
	if len(subs) == 0 {
		return nil, appErr.Newf(appErr.EmptyBatch, "batch is empty")
	}
	if len(subs) > model.MaxBatchSize {
		return nil, appErr.Newf(appErr.BatchTooLarge, "batch of %d exceeds %d", len(subs), model.MaxBatchSize)
	}
	var budget time.Duration
	for i, sub := range subs {
		if err := model.ValidateSubmission(sub); err != nil {
			return nil, appErr.GetError(err).WithDetail("batch_index", i)
		}
		l := sub.EffectiveLimits()
		budget += l.CompileTimeout() + l.ExecutionTimeout()
	}
	ctx, cancel := o.withCallDeadline(ctx, budget)
	defer cancel()

	verdicts := make([]model.Verdict, 0, len(subs))
	for i, sub := range subs {
		v, err := o.Evaluate(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn(ctx, "batch item failed outside the sandbox",
				zap.Int("batch_index", i), zap.Error(err))
			v = model.InternalVerdict(err.Error())
		}
		v.ConfigIndex = i
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

// EvaluateOptimizedBatch judges many case configs against one source with one
// sandbox. The source is uploaded once; case 1 compiles, later cases reuse
// the binary while their schema fingerprint matches. A shared compile failure
// replicates onto every verdict.
func (o *Orchestrator) EvaluateOptimizedBatch(ctx context.Context, lang model.Language, source string, cases []model.CaseConfig, limits *model.ResourceLimits) ([]model.Verdict, error) {
	if len(cases) == 0 {
		return nil, appErr.Newf(appErr.EmptyBatch, "batch is empty")
	}
	if len(cases) > model.MaxBatchSize {
		return nil, appErr.Newf(appErr.BatchTooLarge, "batch of %d exceeds %d", len(cases), model.MaxBatchSize)
	}

	subs := make([]model.Submission, len(cases))
	for i, c := range cases {
		subs[i] = model.Submission{Language: lang, SourceCode: source, Case: c, Limits: limits}
		if err := model.ValidateSubmission(subs[i]); err != nil {
			return nil, appErr.GetError(err).WithDetail("batch_index", i)
		}
	}

	effective := subs[0].EffectiveLimits()
	perCase := effective.CompileTimeout() + effective.ExecutionTimeout()
	ctx, cancel := o.withCallDeadline(ctx, time.Duration(len(cases))*perCase)
	defer cancel()
	start := time.Now()
	h, err := o.mgr.Acquire(ctx, lang, effective)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	// h is reassigned when a kill forces a fresh sandbox; the defer must
	// release whichever handle is current.
	defer func() { o.release(h) }()

	if err := o.mgr.Upload(ctx, h, lang.SourceFileName(), []byte(source)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	sourceUploaded := true

	verdicts := make([]model.Verdict, 0, len(cases))
	for i, sub := range subs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		configDoc, err := codec.EncodeConfig(sub, sub.Case)
		if err != nil {
			return nil, appErr.GetError(err).WithDetail("batch_index", i)
		}

		if !sourceUploaded {
			// previous case killed its sandbox; start over on a fresh one
			o.release(h)
			fresh, err := o.mgr.Acquire(ctx, lang, effective)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, err
			}
			h = fresh
			if err := o.mgr.Upload(ctx, h, lang.SourceFileName(), []byte(source)); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, err
			}
			sourceUploaded = true
		}

		reuse := i > 0
		caseStart := time.Now()
		v, err := o.runCaseOn(ctx, h, sub, configDoc, reuse, &sourceUploaded)
		if err != nil {
			return nil, err
		}
		v.ConfigIndex = i
		metrics.ObserveEvaluation(string(lang), string(v.Status), time.Since(caseStart))

		// shared compile failed: replicate onto every remaining verdict
		if i == 0 && (v.Status == model.StatusCompileError || v.Status == model.StatusCompileTimeout) {
			for j := range cases {
				shared := v
				shared.ConfigIndex = j
				verdicts = append(verdicts, shared)
			}
			metrics.ObserveBatch(string(lang), len(cases), time.Since(start))
			return verdicts, nil
		}
		verdicts = append(verdicts, v)
	}
	metrics.ObserveBatch(string(lang), len(cases), time.Since(start))
	return verdicts, nil
}

// runCase uploads the source and config and executes the harness once.
func (o *Orchestrator) runCase(ctx context.Context, h *sandbox.Handle, sub model.Submission, configDoc []byte, reuse bool) (model.Verdict, error) {
	if err := o.mgr.Upload(ctx, h, sub.Language.SourceFileName(), []byte(sub.SourceCode)); err != nil {
		if ctx.Err() != nil {
			return model.Verdict{}, ctx.Err()
		}
		return model.InternalVerdict(err.Error()), nil
	}
	alive := true
	return o.runCaseOn(ctx, h, sub, configDoc, reuse, &alive)
}

// runCaseOn executes the harness for one config on an already prepared
// sandbox. sourceAlive flips to false when the sandbox was destroyed by a
// deadline kill.
func (o *Orchestrator) runCaseOn(ctx context.Context, h *sandbox.Handle, sub model.Submission, configDoc []byte, reuse bool, sourceAlive *bool) (model.Verdict, error) {
	if err := o.mgr.Upload(ctx, h, configFileName, configDoc); err != nil {
		if ctx.Err() != nil {
			return model.Verdict{}, ctx.Err()
		}
		return model.InternalVerdict(err.Error()), nil
	}

	limits := sub.EffectiveLimits()
	deadline := limits.CompileTimeout() + limits.ExecutionTimeout()
	cmd := []string{harnessBinary, configFileName, resultFileName}
	if reuse {
		cmd = []string{harnessBinary, "-reuse", configFileName, resultFileName}
	}

	exec, err := o.mgr.Exec(ctx, h, cmd, deadline)
	if err != nil {
		if ctx.Err() != nil {
			return model.Verdict{}, ctx.Err()
		}
		return model.InternalVerdict(err.Error()), nil
	}
	if exec.Killed {
		*sourceAlive = false
	}

	resultData, derr := o.mgr.Download(ctx, h, path.Join(o.cfg.WorkDir, resultFileName))
	if derr != nil && ctx.Err() != nil {
		return model.Verdict{}, ctx.Err()
	}

	verdict := Classify(sub.Case, exec, resultData, derr)
	if !sub.Verbose {
		verdict.Stdout = truncate(verdict.Stdout, 8192)
		verdict.Stderr = truncate(verdict.Stderr, 8192)
	}
	return verdict, nil
}

// withCallDeadline bounds one orchestrator call end to end. The budget is
// the summed compile and execution allowance of the cases involved plus a
// fixed slack. Expiry cancels whatever step is in flight; the deferred
// release runs on its own context, so the sandbox is torn down regardless.
func (o *Orchestrator) withCallDeadline(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, budget+o.cfg.CallSlack)
}

// release tears the sandbox down on a fresh context so cancellation of the
// caller never leaks a container.
func (o *Orchestrator) release(h *sandbox.Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := o.mgr.Release(ctx, h); err != nil {
		logger.Warn(ctx, "sandbox release failed", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}
