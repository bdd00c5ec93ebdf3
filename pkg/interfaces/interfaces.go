/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared types for the Akaylee triage pipeline. Defines verification outcomes,
crash records parsed from debugger transcripts, and invocation failures so that the
execution, core and analysis packages can exchange results without import cycles.
*/

package interfaces

import (
	"fmt"
	"strings"
)

// SamplePlaceholder is replaced by the absolute sample path in a target command template
const SamplePlaceholder = "@@"

// StdinMode reports whether samples must be fed on standard input for this target command.
// A template without the placeholder reads its input from stdin.
func StdinMode(targetCmd string) bool {
	return !strings.Contains(targetCmd, SamplePlaceholder)
}

// OutcomeKind tags a discarded verification sample
type OutcomeKind string

const (
	OutcomeInvalid OutcomeKind = "invalid" // Replay exited cleanly or with an ignored signal
	OutcomeTimeout OutcomeKind = "timeout" // Replay exceeded the per-invocation timeout
)

// VerificationOutcome is a discard record produced by the verification pool.
// Samples that still reproduce a crash never get an outcome: membership in the
// accepted set is defined by absence.
type VerificationOutcome struct {
	Sample string      `json:"sample"`
	Kind   OutcomeKind `json:"kind"`
}

// CrashRecord is one block of debugger output turned into fields.
// Any field missing from the block stays empty.
type CrashRecord struct {
	Sample         string `json:"sample"`
	Exploitability string `json:"exploitability"`
	Description    string `json:"description"`
	Hash           string `json:"hash"`
	Location       string `json:"location"`
}

// InvocationStage names the pipeline step an invocation failure happened in
type InvocationStage string

const (
	StageVerify   InvocationStage = "verify"
	StageTriage   InvocationStage = "triage"
	StageMinimize InvocationStage = "minimize"
)

// InvocationFailure reports a work item that could not be processed at all:
// the sample could not be opened, the process could not be started, or the
// external tool failed. The item is dropped from the pool's results.
type InvocationFailure struct {
	Sample string          `json:"sample"`
	Stage  InvocationStage `json:"stage"`
	Err    error           `json:"-"`
}

// NewInvocationFailure wraps err for the given sample and stage
func NewInvocationFailure(stage InvocationStage, sample string, err error) *InvocationFailure {
	return &InvocationFailure{Sample: sample, Stage: stage, Err: err}
}

func (f *InvocationFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Sample, f.Err)
}

func (f *InvocationFailure) Unwrap() error {
	return f.Err
}
