/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: minimize.go
Description: Crash minimization pool. Hands every confirmed crash to an external
minimizer (afl-tmin compatible command line) and collects the paths of the minimized
reproducers it writes into the output directory.
*/

package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/execution"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// DefaultMinimizerCmd is used when no minimizer command is configured
const DefaultMinimizerCmd = "afl-tmin"

// MinimizerConfig configures the minimization pool
type MinimizerConfig struct {
	MinimizerCmd string // Minimizer executable plus fixed options
	TargetCmd    string // Target command template passed after "--"
	OutputDir    string // Directory receiving minimized files
	Workers      int    // Number of parallel workers
}

// Validate checks the config for missing or invalid values
func (c *MinimizerConfig) Validate() error {
	if strings.TrimSpace(c.TargetCmd) == "" {
		return errors.New("target command must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}

// MinimizationReport holds the results of one minimization pool run
type MinimizationReport struct {
	RunID    string
	Outputs  []string                        // Minimized file paths, one per successful input
	Failures []*interfaces.InvocationFailure // Inputs the minimizer failed on
	Stats    core.PipelineStats
}

// Minimizer runs the external minimizer over crash files with a pool of workers
type Minimizer struct {
	config   *MinimizerConfig
	executor *execution.ProcessExecutor
	logger   *logrus.Logger
	reporter core.Reporter
}

// NewMinimizer creates a minimizer. An empty minimizer command defaults to afl-tmin.
func NewMinimizer(config *MinimizerConfig) (*Minimizer, error) {
	if config == nil {
		return nil, errors.New("minimizer config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid minimizer config: %w", err)
	}
	cfg := *config
	if strings.TrimSpace(cfg.MinimizerCmd) == "" {
		cfg.MinimizerCmd = DefaultMinimizerCmd
	}
	logger := logrus.StandardLogger()
	return &Minimizer{
		config:   &cfg,
		executor: execution.NewProcessExecutor(logger),
		logger:   logger,
		reporter: core.NewLoggerReporter(logger),
	}, nil
}

// SetLogger sets the logger used by the minimizer and its executor
func (m *Minimizer) SetLogger(logger *logrus.Logger) {
	m.logger = logger
	m.executor = execution.NewProcessExecutor(logger)
}

// SetReporter sets the event reporter
func (m *Minimizer) SetReporter(reporter core.Reporter) {
	m.reporter = reporter
}

// OutputPath returns where the minimized version of input is written
func OutputPath(outputDir, input string) string {
	return filepath.Join(outputDir, filepath.Base(input))
}

// BuildCommand assembles the minimizer shell command line for one input
func BuildCommand(minimizerCmd, input, output, targetCmd string) string {
	return fmt.Sprintf("%s -i %s -o %s -- %s",
		strings.TrimSpace(minimizerCmd),
		execution.ShellQuote(input),
		execution.ShellQuote(output),
		strings.TrimSpace(targetCmd))
}

// Run minimizes every crash file exactly once. There is no timeout at this
// layer; the minimizer bounds its own runs.
func (m *Minimizer) Run(ctx context.Context, crashes []string) (*MinimizationReport, error) {
	if err := os.MkdirAll(m.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stats := core.NewPipelineStats()
	outputs := core.NewResultCollector[string]()
	failures := core.NewResultCollector[*interfaces.InvocationFailure]()

	pool := core.NewPool("minimize", m.config.Workers, m.logger)
	pool.Drain(ctx, core.NewWorkQueue(crashes), func(ctx context.Context, w *core.Worker, input string) error {
		stats.IncrementProcessed()
		output := OutputPath(m.config.OutputDir, input)
		if err := m.minimize(ctx, w.Logger(), input, output); err != nil {
			failure := interfaces.NewInvocationFailure(interfaces.StageMinimize, input, err)
			stats.IncrementFailures()
			failures.Append(failure)
			m.reporter.OnFailure(failure)
			return failure
		}
		stats.IncrementMinimized()
		outputs.Append(output)
		m.reporter.OnMinimized(input, output)
		return nil
	})

	return &MinimizationReport{
		RunID:    pool.RunID,
		Outputs:  outputs.Items(),
		Failures: failures.Items(),
		Stats:    stats.Snapshot(),
	}, nil
}

func (m *Minimizer) minimize(ctx context.Context, entry *logrus.Entry, input, output string) error {
	line := BuildCommand(m.config.MinimizerCmd, input, output, m.config.TargetCmd)
	entry.WithField("command", line).Debug("Running minimizer")

	result, err := m.executor.RunShell(ctx, line, nil, 0)
	if err != nil {
		return err
	}
	if code := result.ExitCode(); code != 0 {
		if sig, ok := result.TerminatingSignal(); ok {
			return fmt.Errorf("minimizer killed by %s", execution.SignalName(sig))
		}
		return fmt.Errorf("minimizer exited with code %d", code)
	}
	return nil
}
