/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Crash verification pool. Replays every candidate against the target and
discards those that no longer fault (invalid) or hang past the timeout (timeout).
Candidates that still crash produce no outcome at all: the accepted set is whatever
is left of the input once discards and failures are removed.
*/

package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/execution"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// VerifierConfig configures the verification pool
type VerifierConfig struct {
	TargetCmd     string              // Target command template, "@@" marks the sample path
	Timeout       time.Duration       // Per-invocation timeout
	IgnoreSignals execution.SignalSet // Signals that do not count as crashes
	Workers       int                 // Number of parallel workers
}

// Validate checks the config for missing or invalid values
func (c *VerifierConfig) Validate() error {
	if len(execution.SplitCommand(c.TargetCmd)) == 0 {
		return errors.New("target command must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}

// VerificationReport holds the results of one verification pool run
type VerificationReport struct {
	RunID    string
	Outcomes []interfaces.VerificationOutcome // Discards only; accepted samples never appear
	Failures []*interfaces.InvocationFailure  // Samples that could not be replayed
	Stats    core.PipelineStats
}

// Accepted returns the inputs that reproduced a fault: everything not discarded
// and not failed, in input order
func (r *VerificationReport) Accepted(inputs []string) []string {
	rejected := make(map[string]struct{}, len(r.Outcomes)+len(r.Failures))
	for _, o := range r.Outcomes {
		rejected[o.Sample] = struct{}{}
	}
	for _, f := range r.Failures {
		rejected[f.Sample] = struct{}{}
	}
	accepted := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if _, ok := rejected[in]; !ok {
			accepted = append(accepted, in)
		}
	}
	return accepted
}

// Discarded returns the samples with the given outcome kind
func (r *VerificationReport) Discarded(kind interfaces.OutcomeKind) []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			out = append(out, o.Sample)
		}
	}
	return out
}

// Verifier replays candidates against the target with a pool of workers
type Verifier struct {
	config   *VerifierConfig
	executor *execution.ProcessExecutor
	logger   *logrus.Logger
	reporter core.Reporter
}

// NewVerifier creates a verifier. A nil ignore-list defaults to SIGHUP.
func NewVerifier(config *VerifierConfig) (*Verifier, error) {
	if config == nil {
		return nil, errors.New("verifier config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid verifier config: %w", err)
	}
	cfg := *config
	if cfg.IgnoreSignals == nil {
		cfg.IgnoreSignals = execution.DefaultIgnoreSignals()
	}
	logger := logrus.StandardLogger()
	return &Verifier{
		config:   &cfg,
		executor: execution.NewProcessExecutor(logger),
		logger:   logger,
		reporter: core.NewLoggerReporter(logger),
	}, nil
}

// SetLogger sets the logger used by the verifier and its executor
func (v *Verifier) SetLogger(logger *logrus.Logger) {
	v.logger = logger
	v.executor = execution.NewProcessExecutor(logger)
}

// SetReporter sets the event reporter
func (v *Verifier) SetReporter(reporter core.Reporter) {
	v.reporter = reporter
}

// Run replays every sample exactly once. samples must be complete before the
// call; the pool drains them and returns when the queue is empty.
func (v *Verifier) Run(ctx context.Context, samples []string) *VerificationReport {
	stats := core.NewPipelineStats()
	outcomes := core.NewResultCollector[interfaces.VerificationOutcome]()
	failures := core.NewResultCollector[*interfaces.InvocationFailure]()

	pool := core.NewPool("verify", v.config.Workers, v.logger)
	pool.Drain(ctx, core.NewWorkQueue(samples), func(ctx context.Context, w *core.Worker, sample string) error {
		stats.IncrementProcessed()
		outcome, err := v.verifySample(ctx, w.Logger(), sample)
		if err != nil {
			failure := interfaces.NewInvocationFailure(interfaces.StageVerify, sample, err)
			stats.IncrementFailures()
			failures.Append(failure)
			v.reporter.OnFailure(failure)
			return failure
		}
		if outcome == nil {
			stats.IncrementAccepted()
			v.reporter.OnAccepted(sample)
			return nil
		}
		switch outcome.Kind {
		case interfaces.OutcomeTimeout:
			stats.IncrementTimeouts()
		default:
			stats.IncrementInvalid()
		}
		outcomes.Append(*outcome)
		v.reporter.OnOutcome(*outcome)
		return nil
	})

	return &VerificationReport{
		RunID:    pool.RunID,
		Outcomes: outcomes.Items(),
		Failures: failures.Items(),
		Stats:    stats.Snapshot(),
	}
}

// verifySample replays one sample. A nil outcome with a nil error means the
// sample reproduced a qualifying fault.
func (v *Verifier) verifySample(ctx context.Context, entry *logrus.Entry, sample string) (*interfaces.VerificationOutcome, error) {
	inv, err := buildInvocation(v.config.TargetCmd, sample, v.config.Timeout)
	if err != nil {
		return nil, err
	}
	result, err := v.executor.Run(ctx, inv)
	if err != nil {
		return nil, err
	}

	kind, discard := execution.Classify(result, v.config.IgnoreSignals)
	fields := logrus.Fields{"sample": sample, "timed_out": result.TimedOut, "exit_code": result.ExitCode()}
	if sig, ok := result.TerminatingSignal(); ok {
		fields["signal"] = execution.SignalName(sig)
	}
	entry.WithFields(fields).Debug("Sample replayed")

	if !discard {
		return nil, nil
	}
	return &interfaces.VerificationOutcome{Sample: sample, Kind: kind}, nil
}

// buildInvocation turns the target template into a concrete invocation for sample
func buildInvocation(targetCmd, sample string, timeout time.Duration) (execution.Invocation, error) {
	absPath, err := filepath.Abs(sample)
	if err != nil {
		return execution.Invocation{}, fmt.Errorf("failed to resolve sample path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return execution.Invocation{}, fmt.Errorf("failed to stat sample: %w", err)
	}
	if info.IsDir() {
		return execution.Invocation{}, fmt.Errorf("sample is a directory: %s", absPath)
	}

	inv := execution.Invocation{
		Argv:    execution.SubstituteSample(execution.SplitCommand(targetCmd), absPath),
		Timeout: timeout,
	}
	if interfaces.StdinMode(targetCmd) {
		inv.StdinFile = absPath
	}
	return inv, nil
}
