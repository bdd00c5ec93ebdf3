/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: minimize.go
Description: Crash minimization command. Runs the minimizer over the given crash files
and prints the minimized output paths.
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

// RunMinimize minimizes crash files and prints where the results went
func RunMinimize(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	minimizer, err := analysis.NewMinimizer(&analysis.MinimizerConfig{
		MinimizerCmd: viper.GetString("minimize.minimizer"),
		TargetCmd:    viper.GetString("minimize.target"),
		OutputDir:    viper.GetString("minimize.output_dir"),
		Workers:      viper.GetInt("minimize.workers"),
	})
	if err != nil {
		return err
	}
	minimizer.SetLogger(logger.GetLogger())
	minimizer.SetReporter(core.NewLoggerReporter(logger.GetLogger()))

	report, err := minimizer.Run(cmd.Context(), args)
	if err != nil {
		return err
	}
	writeMetrics(logger, string(interfaces.StageMinimize), report.RunID, report.Stats)

	out := cmd.OutOrStdout()
	printSection(out, "minimized", report.Outputs)
	failed := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		failed = append(failed, f.Sample)
	}
	printSection(out, "failed", failed)
	return nil
}
