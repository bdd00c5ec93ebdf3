/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Pipeline statistics shared by the verification, triage and minimization
stages. Counters are updated atomically from concurrent workers.
*/

package core

import (
	"sync/atomic"
	"time"
)

// PipelineStats tracks per-run counters.
// Uses atomic operations for thread-safe updates.
type PipelineStats struct {
	Processed int64     `json:"processed"` // Items handed to a worker
	Accepted  int64     `json:"accepted"`  // Samples that reproduced a fault
	Invalid   int64     `json:"invalid"`   // Samples discarded as invalid
	Timeouts  int64     `json:"timeouts"`  // Samples discarded as timeout
	Failures  int64     `json:"failures"`  // Invocation failures
	Records   int64     `json:"records"`   // Crash records parsed
	Minimized int64     `json:"minimized"` // Minimized outputs produced
	StartTime time.Time `json:"start_time"`
}

// NewPipelineStats creates stats stamped with the current time
func NewPipelineStats() *PipelineStats {
	return &PipelineStats{StartTime: time.Now()}
}

// IncrementProcessed atomically increments the processed counter
func (s *PipelineStats) IncrementProcessed() {
	atomic.AddInt64(&s.Processed, 1)
}

// IncrementAccepted atomically increments the accepted counter
func (s *PipelineStats) IncrementAccepted() {
	atomic.AddInt64(&s.Accepted, 1)
}

// IncrementInvalid atomically increments the invalid counter
func (s *PipelineStats) IncrementInvalid() {
	atomic.AddInt64(&s.Invalid, 1)
}

// IncrementTimeouts atomically increments the timeout counter
func (s *PipelineStats) IncrementTimeouts() {
	atomic.AddInt64(&s.Timeouts, 1)
}

// IncrementFailures atomically increments the failure counter
func (s *PipelineStats) IncrementFailures() {
	atomic.AddInt64(&s.Failures, 1)
}

// IncrementRecords atomically increments the crash record counter
func (s *PipelineStats) IncrementRecords() {
	atomic.AddInt64(&s.Records, 1)
}

// IncrementMinimized atomically increments the minimized counter
func (s *PipelineStats) IncrementMinimized() {
	atomic.AddInt64(&s.Minimized, 1)
}

// Snapshot returns a consistent copy safe to read without atomics
func (s *PipelineStats) Snapshot() PipelineStats {
	return PipelineStats{
		Processed: atomic.LoadInt64(&s.Processed),
		Accepted:  atomic.LoadInt64(&s.Accepted),
		Invalid:   atomic.LoadInt64(&s.Invalid),
		Timeouts:  atomic.LoadInt64(&s.Timeouts),
		Failures:  atomic.LoadInt64(&s.Failures),
		Records:   atomic.LoadInt64(&s.Records),
		Minimized: atomic.LoadInt64(&s.Minimized),
		StartTime: s.StartTime,
	}
}
