/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signals.go
Description: Wait-status classification for replayed samples. Decides whether a finished
target run reproduced a qualifying fault, exited cleanly, died from an ignorable signal,
or timed out.
*/

package execution

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"golang.org/x/sys/unix"
)

// SignalSet is a set of signal numbers that do not count as crashes
type SignalSet map[syscall.Signal]struct{}

// NewSignalSet builds a set from the given signals
func NewSignalSet(sigs ...syscall.Signal) SignalSet {
	s := make(SignalSet, len(sigs))
	for _, sig := range sigs {
		s[sig] = struct{}{}
	}
	return s
}

// DefaultIgnoreSignals returns the default ignore-list: hangup only
func DefaultIgnoreSignals() SignalSet {
	return NewSignalSet(unix.SIGHUP)
}

// Contains reports whether sig is in the set
func (s SignalSet) Contains(sig syscall.Signal) bool {
	_, ok := s[sig]
	return ok
}

// Signals returns the members in ascending order
func (s SignalSet) Signals() []syscall.Signal {
	out := make([]syscall.Signal, 0, len(s))
	for sig := range s {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s SignalSet) String() string {
	names := make([]string, 0, len(s))
	for _, sig := range s.Signals() {
		names = append(names, SignalName(sig))
	}
	return strings.Join(names, ",")
}

// ParseSignal accepts a signal number ("11") or name ("SIGSEGV", "segv")
func ParseSignal(s string) (syscall.Signal, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid signal number: %d", n)
		}
		return syscall.Signal(n), nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal: %q", s)
}

// ParseSignalSet parses a list of signal specs into a set
func ParseSignalSet(specs []string) (SignalSet, error) {
	set := NewSignalSet()
	for _, spec := range specs {
		sig, err := ParseSignal(spec)
		if err != nil {
			return nil, err
		}
		set[sig] = struct{}{}
	}
	return set, nil
}

// SignalName returns the symbolic name of sig, or its number if unknown
func SignalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return strconv.Itoa(int(sig))
}

// TerminatingSignal returns the signal that killed or stopped the process
func (r *Result) TerminatingSignal() (syscall.Signal, bool) {
	switch {
	case r.Status.Signaled():
		return r.Status.Signal(), true
	case r.Status.Stopped():
		return r.Status.StopSignal(), true
	}
	return 0, false
}

// Classify maps a finished replay to a discard kind. discard is false when the
// run reproduced a qualifying fault, which callers treat as an implicit accept.
func Classify(r *Result, ignore SignalSet) (kind interfaces.OutcomeKind, discard bool) {
	if r.TimedOut {
		return interfaces.OutcomeTimeout, true
	}
	sig, ok := r.TerminatingSignal()
	if !ok {
		return interfaces.OutcomeInvalid, true
	}
	if ignore.Contains(sig) {
		return interfaces.OutcomeInvalid, true
	}
	return "", false
}
