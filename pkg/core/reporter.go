/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for pipeline events. Every discard,
crash record, minimized output and invocation failure is pushed through a Reporter so
nothing a worker drops goes unseen.
*/

package core

import (
	"sync"

	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// Reporter receives pipeline events from concurrent workers.
// Implementations must be safe for concurrent use.
type Reporter interface {
	// OnOutcome is called when a verification sample is discarded.
	OnOutcome(outcome interfaces.VerificationOutcome)
	// OnAccepted is called when a verification sample reproduced a fault.
	OnAccepted(sample string)
	// OnCrashRecord is called for each record parsed from a debugger transcript.
	OnCrashRecord(record interfaces.CrashRecord)
	// OnMinimized is called when a minimized output was written.
	OnMinimized(input, output string)
	// OnFailure is called when an item could not be processed.
	OnFailure(failure *interfaces.InvocationFailure)
}

// LoggerReporter logs pipeline events using logrus.
type LoggerReporter struct {
	logger *logrus.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logrus.Logger) *LoggerReporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggerReporter{logger: logger}
}

// OnOutcome logs a discarded sample.
func (r *LoggerReporter) OnOutcome(outcome interfaces.VerificationOutcome) {
	r.logger.WithFields(logrus.Fields{"sample": outcome.Sample, "kind": outcome.Kind}).Info("Sample discarded")
}

// OnAccepted logs a confirmed crash.
func (r *LoggerReporter) OnAccepted(sample string) {
	r.logger.WithField("sample", sample).Info("Crash reproduced")
}

// OnCrashRecord logs a parsed crash record.
func (r *LoggerReporter) OnCrashRecord(record interfaces.CrashRecord) {
	r.logger.WithFields(logrus.Fields{
		"sample":         record.Sample,
		"exploitability": record.Exploitability,
		"hash":           record.Hash,
	}).Info("Crash record parsed")
}

// OnMinimized logs a minimized output.
func (r *LoggerReporter) OnMinimized(input, output string) {
	r.logger.WithFields(logrus.Fields{"input": input, "output": output}).Info("Crash minimized")
}

// OnFailure logs an invocation failure.
func (r *LoggerReporter) OnFailure(failure *interfaces.InvocationFailure) {
	r.logger.WithFields(logrus.Fields{
		"sample": failure.Sample,
		"stage":  failure.Stage,
		"error":  failure.Err,
	}).Error("Invocation failed")
}

// MultiReporter fans events out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) OnOutcome(outcome interfaces.VerificationOutcome) {
	for _, r := range m {
		r.OnOutcome(outcome)
	}
}

func (m MultiReporter) OnAccepted(sample string) {
	for _, r := range m {
		r.OnAccepted(sample)
	}
}

func (m MultiReporter) OnCrashRecord(record interfaces.CrashRecord) {
	for _, r := range m {
		r.OnCrashRecord(record)
	}
}

func (m MultiReporter) OnMinimized(input, output string) {
	for _, r := range m {
		r.OnMinimized(input, output)
	}
}

func (m MultiReporter) OnFailure(failure *interfaces.InvocationFailure) {
	for _, r := range m {
		r.OnFailure(failure)
	}
}

// RecordingReporter keeps every event in memory. Used by the CLI summary and tests.
type RecordingReporter struct {
	mu        sync.Mutex
	Outcomes  []interfaces.VerificationOutcome
	Accepted  []string
	Records   []interfaces.CrashRecord
	Minimized []string
	Failures  []*interfaces.InvocationFailure
}

func (r *RecordingReporter) OnOutcome(outcome interfaces.VerificationOutcome) {
	r.mu.Lock()
	r.Outcomes = append(r.Outcomes, outcome)
	r.mu.Unlock()
}

func (r *RecordingReporter) OnAccepted(sample string) {
	r.mu.Lock()
	r.Accepted = append(r.Accepted, sample)
	r.mu.Unlock()
}

func (r *RecordingReporter) OnCrashRecord(record interfaces.CrashRecord) {
	r.mu.Lock()
	r.Records = append(r.Records, record)
	r.mu.Unlock()
}

func (r *RecordingReporter) OnMinimized(input, output string) {
	r.mu.Lock()
	r.Minimized = append(r.Minimized, output)
	r.mu.Unlock()
}

func (r *RecordingReporter) OnFailure(failure *interfaces.InvocationFailure) {
	r.mu.Lock()
	r.Failures = append(r.Failures, failure)
	r.mu.Unlock()
}
