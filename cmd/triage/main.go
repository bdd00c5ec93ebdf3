/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the Akaylee triage pipeline. Exposes crash
verification, debugger-based triage and crash minimization as subcommands with flags
bound to viper configuration.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kleascm/akaylee-triage/cmd/triage/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Children run in their own process groups, so a terminal interrupt only
	// reaches us; cancelling the context kills each running group.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree and binds its flags into viper
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "akaylee-triage",
		Short: "Akaylee Triage - verify, triage and minimize fuzzer crashes",
		Long: `Akaylee Triage post-processes crash candidates found by a fuzzer. It replays
candidates to confirm they still crash, parses batch debugger output into crash records,
and minimizes confirmed crashes with an external minimizer.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty = console only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Use JSON log format")
	rootCmd.PersistentFlags().String("metrics-dir", "", "Write per-run statistics as JSON under this directory")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("metrics_dir", rootCmd.PersistentFlags().Lookup("metrics-dir"))

	// Add verify command
	verifyCmd := &cobra.Command{
		Use:   "verify [flags] SAMPLE...",
		Short: "Replay crash candidates and drop those that no longer crash",
		Long: `Replay every sample against the target. Samples that exit cleanly, die from an
ignored signal, or exceed the timeout are reported as discarded; the rest are confirmed
crashes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: commands.RunVerify,
	}
	verifyCmd.Flags().String("target", "", "Target command, @@ is replaced by the sample path (required)")
	verifyCmd.Flags().Duration("timeout", 10*time.Second, "Timeout per replay")
	verifyCmd.Flags().StringSlice("ignore-signal", []string{"SIGHUP"}, "Signals that do not count as crashes")
	verifyCmd.Flags().Int("workers", 1, "Number of parallel workers")
	verifyCmd.MarkFlagRequired("target")

	viper.BindPFlag("verify.target", verifyCmd.Flags().Lookup("target"))
	viper.BindPFlag("verify.timeout", verifyCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("verify.ignore_signals", verifyCmd.Flags().Lookup("ignore-signal"))
	viper.BindPFlag("verify.workers", verifyCmd.Flags().Lookup("workers"))
	rootCmd.AddCommand(verifyCmd)

	// Add gdb command
	gdbCmd := &cobra.Command{
		Use:   "gdb",
		Short: "Run a batch debugger script and print parsed crash records",
		Long: `Run the given debugger command line once, capture its output, and turn every
"Crash sample:" ... "Explanation:" block into a crash record printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: commands.RunTriage,
	}
	gdbCmd.Flags().String("debugger-cmd", "", "Shell command running the debugger script (required)")
	gdbCmd.Flags().Duration("timeout", 0, "Timeout for the whole debugger run (0 = none)")
	gdbCmd.MarkFlagRequired("debugger-cmd")

	viper.BindPFlag("triage.debugger_cmd", gdbCmd.Flags().Lookup("debugger-cmd"))
	viper.BindPFlag("triage.timeout", gdbCmd.Flags().Lookup("timeout"))
	rootCmd.AddCommand(gdbCmd)

	// Add tmin command
	tminCmd := &cobra.Command{
		Use:   "tmin [flags] CRASH...",
		Short: "Minimize crash files with an external minimizer",
		Long: `Run the minimizer over every crash file, writing the minimized input under the
output directory with the original base name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: commands.RunMinimize,
	}
	tminCmd.Flags().String("target", "", "Target command passed to the minimizer (required)")
	tminCmd.Flags().String("minimizer", "afl-tmin", "Minimizer command")
	tminCmd.Flags().String("output-dir", "./minimized", "Directory for minimized files")
	tminCmd.Flags().Int("workers", 1, "Number of parallel workers")
	tminCmd.MarkFlagRequired("target")

	viper.BindPFlag("minimize.target", tminCmd.Flags().Lookup("target"))
	viper.BindPFlag("minimize.minimizer", tminCmd.Flags().Lookup("minimizer"))
	viper.BindPFlag("minimize.output_dir", tminCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("minimize.workers", tminCmd.Flags().Lookup("workers"))
	rootCmd.AddCommand(tminCmd)

	return rootCmd
}
