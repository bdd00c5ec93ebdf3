/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing per-run pipeline statistics to a metrics directory.
Files are timestamped and grouped into one subdirectory per stage so that runs can be
compared over time.
*/

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/akaylee-triage/pkg/core"
)

// RunMetrics is the document written for one stage run
type RunMetrics struct {
	Stage    string             `json:"stage"`
	RunID    string             `json:"run_id"`
	Finished time.Time          `json:"finished"`
	Elapsed  string             `json:"elapsed"`
	Stats    core.PipelineStats `json:"stats"`
}

// WriteRunMetrics writes stats for one run under <metricsDir>/<stage>/ and returns the file path.
// File name: 2026-01-02_15-04-05_verify_<run id prefix>.json
func WriteRunMetrics(metricsDir, stage, runID string, stats core.PipelineStats) (string, error) {
	if metricsDir == "" {
		return "", errors.New("metrics directory must not be empty")
	}
	dir := filepath.Join(metricsDir, stage)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	now := time.Now()
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("%s_%s_%s.json", now.Format("2006-01-02_15-04-05"), stage, id)
	filePath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(RunMetrics{
		Stage:    stage,
		RunID:    runID,
		Finished: now,
		Elapsed:  now.Sub(stats.StartTime).String(),
		Stats:    stats,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}
	return filePath, nil
}
