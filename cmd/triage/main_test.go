/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main_test.go
Description: Tests for the command tree: flag binding and context propagation into
running subcommands.
*/

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommandCancelStopsTargets tests that cancelling the root context kills a
// running target instead of waiting out its timeout
func TestRootCommandCancelStopsTargets(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	script := filepath.Join(dir, "hang.sh")
	require.NoError(t, os.WriteFile(script, []byte("sleep 30\n"), 0644))
	sample := filepath.Join(dir, "sample")
	require.NoError(t, os.WriteFile(sample, []byte("x"), 0644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"verify",
		"--log-level", "error",
		"--target", "/bin/sh " + script + " @@",
		"--timeout", "60s",
		sample,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(300*time.Millisecond, cancel)

	start := time.Now()
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Less(t, time.Since(start), 10*time.Second)

	assert.Contains(t, out.String(), "# accepted (0)\n")
	assert.Contains(t, out.String(), "# timeout (0)\n")
	assert.Contains(t, out.String(), "# failed (1)\n"+sample+"\n")
}

// TestRootCommandTimeoutFlag tests that the duration flag reaches viper as a duration
func TestRootCommandTimeoutFlag(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := newRootCmd()
	verify, _, err := root.Find([]string{"verify"})
	require.NoError(t, err)
	require.NoError(t, verify.Flags().Set("timeout", "1500ms"))

	assert.Equal(t, 1500*time.Millisecond, viper.GetDuration("verify.timeout"))
}
