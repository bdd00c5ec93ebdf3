/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: helpers_test.go
Description: Shared fixtures for the analysis tests: throwaway shell targets and samples.
*/

package analysis_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// targetBody dispatches on the sample content read from $input
const targetBody = `
case "$data" in
	crash) kill -SEGV $$ ;;
	abort) kill -ABRT $$ ;;
	hup) kill -HUP $$ ;;
	hang) sleep 5 ;;
	fail) exit 1 ;;
esac
exit 0
`

// writeScript writes a shell script and returns it as a command prefix.
// Scripts run through /bin/sh so they never need the exec bit.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return "/bin/sh " + path
}

// fileTarget reads the sample path from its first argument
func fileTarget(t *testing.T, dir string) string {
	return writeScript(t, dir, "file_target.sh", `data=$(cat "$1")`+targetBody) + " @@"
}

// stdinTarget reads the sample from standard input
func stdinTarget(t *testing.T, dir string) string {
	return writeScript(t, dir, "stdin_target.sh", `data=$(cat)`+targetBody)
}

func writeSample(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0644))
	return path
}

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
