/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: crash_triage.go
Description: Crash triage from a batch debugger run. Executes one debugger invocation over
a crash corpus, captures its transcript even when the run fails or times out, and splits
the transcript into per-crash blocks that become structured CrashRecords.
*/

package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/execution"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// Transcript markers emitted by the exploitable debugger plugin
const (
	markerSample         = "Crash sample:"
	markerExplanation    = "Explanation:"
	markerExploitability = "Exploitability Classification:"
	markerDescription    = "Short description:"
	markerHash           = "Hash:"
	markerLocation       = "    at "
)

// parserState is the block extractor state
type parserState int

const (
	stateScanning parserState = iota
	stateInBlock
)

// SplitBlocks extracts crash blocks from transcript lines. A block runs from the
// most recent "Crash sample:" line through the next "Explanation:" line inclusive.
// An "Explanation:" outside a block is ignored and an unterminated block is dropped.
func SplitBlocks(lines []string) [][]string {
	var blocks [][]string
	state := stateScanning
	start := 0

	for i, line := range lines {
		if strings.Contains(line, markerSample) {
			state = stateInBlock
			start = i
		}
		if state == stateInBlock && strings.Contains(line, markerExplanation) {
			blocks = append(blocks, lines[start:i+1])
			state = stateScanning
		}
	}
	return blocks
}

// ParseBlock extracts a CrashRecord from one block. Each line feeds at most one
// field and the first line matching a field wins. Field markers may appear
// anywhere in a line; the location marker only at its start.
func ParseBlock(block []string) interfaces.CrashRecord {
	var rec interfaces.CrashRecord
	for _, line := range block {
		if v, ok := valueAfter(line, markerSample); ok {
			if rec.Sample == "" {
				rec.Sample = trimQuotes(v)
			}
		} else if v, ok := valueAfter(line, markerExploitability); ok {
			if rec.Exploitability == "" {
				rec.Exploitability = v
			}
		} else if v, ok := valueAfter(line, markerDescription); ok {
			if rec.Description == "" {
				rec.Description = v
			}
		} else if v, ok := valueAfter(line, markerHash); ok {
			if rec.Hash == "" {
				rec.Hash = v
			}
		} else if v, ok := locationAfter(line); ok {
			if rec.Location == "" {
				rec.Location = v
			}
		}
	}
	return rec
}

// ParseTranscript turns raw debugger output into crash records in transcript order.
// Output without any complete block yields no records.
func ParseTranscript(output []byte) []interfaces.CrashRecord {
	blocks := SplitBlocks(splitLines(output))
	records := make([]interfaces.CrashRecord, 0, len(blocks))
	for _, block := range blocks {
		records = append(records, ParseBlock(block))
	}
	return records
}

// splitLines decodes output, replacing invalid UTF-8, and splits it on line breaks
func splitLines(output []byte) []string {
	if len(output) == 0 {
		return nil
	}
	text := strings.ToValidUTF8(string(output), "�")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func valueAfter(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(line[idx+len(marker):]), true
}

// locationAfter matches frame lines, which start with the location marker
func locationAfter(line string) (string, bool) {
	if !strings.HasPrefix(line, markerLocation) {
		return "", false
	}
	return strings.TrimSpace(line[len(markerLocation):]), true
}

func trimQuotes(s string) string {
	s = strings.TrimPrefix(s, "'")
	return strings.TrimSuffix(s, "'")
}

// DebuggerConfig configures the batch debugger run
type DebuggerConfig struct {
	Command string        // Shell command line running the debugger script over the corpus
	Timeout time.Duration // Upper bound for the whole run (zero = unbounded)
}

// Validate checks the config for missing or invalid values
func (c *DebuggerConfig) Validate() error {
	if strings.TrimSpace(c.Command) == "" {
		return errors.New("debugger command must not be empty")
	}
	if c.Timeout < 0 {
		return errors.New("debugger timeout must not be negative")
	}
	return nil
}

// TriageReport holds the records parsed from one debugger run
type TriageReport struct {
	RunID    string
	Records  []interfaces.CrashRecord // In transcript order
	ExitCode int                      // Debugger exit code, -1 if it did not exit normally
	TimedOut bool                     // The debugger was killed after Timeout
	Stats    core.PipelineStats
}

// DebuggerTriage runs the debugger once and parses its transcript
type DebuggerTriage struct {
	config   *DebuggerConfig
	executor *execution.ProcessExecutor
	logger   *logrus.Logger
	reporter core.Reporter
}

// NewDebuggerTriage creates a triage worker for the given debugger command
func NewDebuggerTriage(config *DebuggerConfig) (*DebuggerTriage, error) {
	if config == nil {
		return nil, errors.New("debugger config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid debugger config: %w", err)
	}
	cfg := *config
	logger := logrus.StandardLogger()
	return &DebuggerTriage{
		config:   &cfg,
		executor: execution.NewProcessExecutor(logger),
		logger:   logger,
		reporter: core.NewLoggerReporter(logger),
	}, nil
}

// SetLogger sets the logger used by the triage worker and its executor
func (t *DebuggerTriage) SetLogger(logger *logrus.Logger) {
	t.logger = logger
	t.executor = execution.NewProcessExecutor(logger)
}

// SetReporter sets the event reporter
func (t *DebuggerTriage) SetReporter(reporter core.Reporter) {
	t.reporter = reporter
}

// Run executes the debugger and parses whatever it printed. A failed or timed-out
// run is still parsed; an error is returned only when the debugger could not be
// run at all, together with an empty report.
func (t *DebuggerTriage) Run(ctx context.Context) (*TriageReport, error) {
	stats := core.NewPipelineStats()
	report := &TriageReport{RunID: uuid.New().String(), ExitCode: -1}
	entry := t.logger.WithFields(logrus.Fields{"stage": interfaces.StageTriage, "run_id": report.RunID})

	var output bytes.Buffer
	stats.IncrementProcessed()
	result, err := t.executor.RunShell(ctx, t.config.Command, &output, t.config.Timeout)
	if err != nil {
		failure := interfaces.NewInvocationFailure(interfaces.StageTriage, t.config.Command, err)
		stats.IncrementFailures()
		t.reporter.OnFailure(failure)
		report.Stats = stats.Snapshot()
		return report, failure
	}

	report.ExitCode = result.ExitCode()
	report.TimedOut = result.TimedOut
	fields := logrus.Fields{"exit_code": report.ExitCode, "timed_out": report.TimedOut, "bytes": output.Len()}
	if result.TimedOut || report.ExitCode != 0 {
		entry.WithFields(fields).Warn("Debugger run did not complete cleanly, parsing partial transcript")
	} else {
		entry.WithFields(fields).Debug("Debugger run finished")
	}

	records := core.NewResultCollector[interfaces.CrashRecord]()
	for _, rec := range ParseTranscript(output.Bytes()) {
		records.Append(rec)
		stats.IncrementRecords()
		t.reporter.OnCrashRecord(rec)
	}
	report.Records = records.Items()
	report.Stats = stats.Snapshot()

	entry.WithField("records", len(report.Records)).Info("Triage finished")
	return report, nil
}
