/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: command.go
Description: Command-line construction helpers: placeholder substitution for target
templates and quoting for lines handed to /bin/sh.
*/

package execution

import (
	"strings"

	"github.com/kleascm/akaylee-triage/pkg/interfaces"
)

// SplitCommand splits a command template on whitespace. Templates are not
// shell-interpreted, so quotes have no special meaning.
func SplitCommand(template string) []string {
	return strings.Fields(template)
}

// SubstituteSample replaces every placeholder in argv with samplePath
func SubstituteSample(argv []string, samplePath string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = strings.ReplaceAll(arg, interfaces.SamplePlaceholder, samplePath)
	}
	return out
}

// ShellQuote quotes s for use as a single word in a /bin/sh command line
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%+=:,./_-", r)
}
