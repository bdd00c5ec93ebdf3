/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signals_test.go
Description: Tests for wait-status classification and signal parsing.
*/

package execution_test

import (
	"syscall"
	"testing"

	"github.com/kleascm/akaylee-triage/pkg/execution"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Linux wait status encodings
func exited(code int) syscall.WaitStatus { return syscall.WaitStatus(code << 8) }
func signaled(sig syscall.Signal) syscall.WaitStatus { return syscall.WaitStatus(sig) }
func stopped(sig syscall.Signal) syscall.WaitStatus { return syscall.WaitStatus(int(sig)<<8 | 0x7f) }

func TestClassify(t *testing.T) {
	testCases := []struct {
		name    string
		result  execution.Result
		ignore  execution.SignalSet
		kind    interfaces.OutcomeKind
		discard bool
	}{
		{
			name:    "Clean exit is invalid",
			result:  execution.Result{Status: exited(0)},
			ignore:  execution.DefaultIgnoreSignals(),
			kind:    interfaces.OutcomeInvalid,
			discard: true,
		},
		{
			name:    "Non-zero exit is invalid",
			result:  execution.Result{Status: exited(1)},
			ignore:  execution.DefaultIgnoreSignals(),
			kind:    interfaces.OutcomeInvalid,
			discard: true,
		},
		{
			name:    "SIGSEGV is accepted",
			result:  execution.Result{Status: signaled(syscall.SIGSEGV)},
			ignore:  execution.DefaultIgnoreSignals(),
			discard: false,
		},
		{
			name:    "SIGHUP is ignored by default",
			result:  execution.Result{Status: signaled(syscall.SIGHUP)},
			ignore:  execution.DefaultIgnoreSignals(),
			kind:    interfaces.OutcomeInvalid,
			discard: true,
		},
		{
			name:    "Stopped by SIGSEGV is accepted",
			result:  execution.Result{Status: stopped(syscall.SIGSEGV)},
			ignore:  execution.DefaultIgnoreSignals(),
			discard: false,
		},
		{
			name:    "Stopped by SIGHUP is invalid",
			result:  execution.Result{Status: stopped(syscall.SIGHUP)},
			ignore:  execution.DefaultIgnoreSignals(),
			kind:    interfaces.OutcomeInvalid,
			discard: true,
		},
		{
			name:    "Custom ignore-list",
			result:  execution.Result{Status: signaled(syscall.SIGABRT)},
			ignore:  execution.NewSignalSet(syscall.SIGABRT),
			kind:    interfaces.OutcomeInvalid,
			discard: true,
		},
		{
			name:    "Timeout wins over the kill signal",
			result:  execution.Result{Status: signaled(syscall.SIGKILL), TimedOut: true},
			ignore:  execution.DefaultIgnoreSignals(),
			kind:    interfaces.OutcomeTimeout,
			discard: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, discard := execution.Classify(&tc.result, tc.ignore)
			assert.Equal(t, tc.discard, discard)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestParseSignal(t *testing.T) {
	valid := map[string]syscall.Signal{
		"1":       syscall.SIGHUP,
		"11":      syscall.SIGSEGV,
		"SIGSEGV": syscall.SIGSEGV,
		"segv":    syscall.SIGSEGV,
		"HUP":     syscall.SIGHUP,
		" 6 ":     syscall.SIGABRT,
	}
	for spec, expected := range valid {
		sig, err := execution.ParseSignal(spec)
		require.NoError(t, err, spec)
		assert.Equal(t, expected, sig, spec)
	}

	for _, spec := range []string{"", "0", "-3", "SIGBOGUS"} {
		_, err := execution.ParseSignal(spec)
		assert.Error(t, err, spec)
	}
}

func TestSignalSet(t *testing.T) {
	set, err := execution.ParseSignalSet([]string{"SIGSEGV", "1"})
	require.NoError(t, err)
	assert.True(t, set.Contains(syscall.SIGHUP))
	assert.True(t, set.Contains(syscall.SIGSEGV))
	assert.False(t, set.Contains(syscall.SIGABRT))
	assert.Equal(t, []syscall.Signal{syscall.SIGHUP, syscall.SIGSEGV}, set.Signals())
	assert.Equal(t, "SIGHUP,SIGSEGV", set.String())

	_, err = execution.ParseSignalSet([]string{"nope"})
	assert.Error(t, err)

	assert.Equal(t, "SIGHUP", execution.DefaultIgnoreSignals().String())
}
