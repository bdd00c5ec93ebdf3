/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: triage.go
Description: Debugger triage command. Runs the batch debugger command once and prints
each parsed crash record as a JSON line.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/akaylee-triage/pkg/analysis"
	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunTriage runs the debugger and prints the parsed crash records
func RunTriage(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	timeout, err := durationSetting("triage.timeout")
	if err != nil {
		return err
	}

	triage, err := analysis.NewDebuggerTriage(&analysis.DebuggerConfig{
		Command: viper.GetString("triage.debugger_cmd"),
		Timeout: timeout,
	})
	if err != nil {
		return err
	}
	triage.SetLogger(logger.GetLogger())
	triage.SetReporter(core.NewLoggerReporter(logger.GetLogger()))

	report, err := triage.Run(cmd.Context())
	writeMetrics(logger, string(interfaces.StageTriage), report.RunID, report.Stats)
	if err != nil {
		return fmt.Errorf("debugger run failed: %w", err)
	}
	return printJSONLines(cmd.OutOrStdout(), report.Records)
}
