/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the triage commands: configuration loading, logging
setup and result printing.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/logging"
	"github.com/kleascm/akaylee-triage/pkg/utils"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("AKAYLEE_TRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the logger from the log_* settings
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultLoggerConfig()
	config.Level = logging.LogLevel(viper.GetString("log_level"))
	config.Format = logging.LogFormat(viper.GetString("log_format"))
	if viper.GetBool("json_logs") {
		config.Format = logging.LogFormatJSON
	}
	config.OutputDir = viper.GetString("log_dir")
	if n := viper.GetInt("log_max_files"); n > 0 {
		config.MaxFiles = n
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// durationSetting reads a timeout key. Bare numbers ("10", 10, 2.5) are seconds,
// anything else must be a Go duration string such as "500ms".
func durationSetting(key string) (time.Duration, error) {
	raw := viper.Get(key)
	if raw == nil {
		return 0, nil
	}
	if _, isDuration := raw.(time.Duration); !isDuration {
		if secs, err := cast.ToFloat64E(raw); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// writeMetrics stores run statistics when a metrics directory is configured
func writeMetrics(logger *logging.Logger, stage, runID string, stats core.PipelineStats) {
	logger.LogStats(stage, stats)

	dir := viper.GetString("metrics_dir")
	if dir == "" {
		return
	}
	path, err := utils.WriteRunMetrics(dir, stage, runID, stats)
	if err != nil {
		logger.Warning("Failed to write metrics", map[string]interface{}{"error": err})
		return
	}
	logger.Debug("Metrics written", map[string]interface{}{"path": path})
}

// printSection writes a titled list of paths, one per line
func printSection(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "# %s (%d)\n", title, len(items))
	for _, item := range items {
		fmt.Fprintln(w, item)
	}
}

// printJSONLines writes each value as one JSON document per line
func printJSONLines[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	return nil
}
