/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Crash verification command. Replays the given samples and prints the
accepted, invalid, timed-out and failed sets.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/akaylee-triage/pkg/analysis"
	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/execution"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunVerify replays samples against the target and prints the classification
func RunVerify(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	ignore, err := execution.ParseSignalSet(viper.GetStringSlice("verify.ignore_signals"))
	if err != nil {
		return fmt.Errorf("invalid ignore-signal: %w", err)
	}

	timeout, err := durationSetting("verify.timeout")
	if err != nil {
		return err
	}

	config := &analysis.VerifierConfig{
		TargetCmd:     viper.GetString("verify.target"),
		Timeout:       timeout,
		IgnoreSignals: ignore,
		Workers:       viper.GetInt("verify.workers"),
	}
	verifier, err := analysis.NewVerifier(config)
	if err != nil {
		return err
	}
	verifier.SetLogger(logger.GetLogger())
	verifier.SetReporter(core.NewLoggerReporter(logger.GetLogger()))

	logger.Info("Verifying samples", map[string]interface{}{
		"samples":        len(args),
		"target":         config.TargetCmd,
		"stdin_mode":     interfaces.StdinMode(config.TargetCmd),
		"ignore_signals": ignore.String(),
	})

	report := verifier.Run(cmd.Context(), args)
	writeMetrics(logger, string(interfaces.StageVerify), report.RunID, report.Stats)

	out := cmd.OutOrStdout()
	printSection(out, "accepted", report.Accepted(args))
	printSection(out, "invalid", report.Discarded(interfaces.OutcomeInvalid))
	printSection(out, "timeout", report.Discarded(interfaces.OutcomeTimeout))

	failed := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		failed = append(failed, f.Sample)
	}
	printSection(out, "failed", failed)
	return nil
}
