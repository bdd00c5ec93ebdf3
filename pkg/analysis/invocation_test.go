/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: invocation_test.go
Description: Tests for turning a target template into a concrete invocation.
*/

package analysis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInvocationPlaceholder(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "id:000001")
	require.NoError(t, os.WriteFile(sample, []byte("x"), 0644))

	inv, err := buildInvocation("./target -f @@ --again=@@", sample, 3*time.Second)
	require.NoError(t, err)

	assert.Equal(t, []string{"./target", "-f", sample, "--again=" + sample}, inv.Argv)
	assert.Empty(t, inv.StdinFile)
	assert.Equal(t, 3*time.Second, inv.Timeout)
}

func TestBuildInvocationStdinMode(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "crash")
	require.NoError(t, os.WriteFile(sample, []byte("x"), 0644))

	inv, err := buildInvocation("./target --parse", sample, time.Second)
	require.NoError(t, err)

	assert.Equal(t, []string{"./target", "--parse"}, inv.Argv)
	assert.Equal(t, sample, inv.StdinFile)
}

func TestBuildInvocationResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crash"), []byte("x"), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, filepath.Join(dir, "crash"))
	require.NoError(t, err)

	inv, err := buildInvocation("./target @@", rel, time.Second)
	require.NoError(t, err)

	require.True(t, filepath.IsAbs(inv.Argv[1]))
	assert.Equal(t, filepath.Join(dir, "crash"), inv.Argv[1])
}

func TestBuildInvocationRejectsUnreadableSamples(t *testing.T) {
	dir := t.TempDir()

	_, err := buildInvocation("./target @@", filepath.Join(dir, "missing"), time.Second)
	assert.Error(t, err)

	_, err = buildInvocation("./target @@", dir, time.Second)
	assert.Error(t, err)
}
