/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer_test.go
Description: Tests for the per-run metrics writer.
*/

package utils_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRunMetrics(t *testing.T) {
	dir := t.TempDir()
	stats := core.NewPipelineStats()
	stats.IncrementProcessed()
	stats.IncrementProcessed()
	stats.IncrementTimeouts()

	path, err := utils.WriteRunMetrics(dir, "verify", "0123456789abcdef", stats.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "verify"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_verify_01234567.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var metrics utils.RunMetrics
	require.NoError(t, json.Unmarshal(data, &metrics))
	assert.Equal(t, "verify", metrics.Stage)
	assert.Equal(t, "0123456789abcdef", metrics.RunID)
	assert.Equal(t, int64(2), metrics.Stats.Processed)
	assert.Equal(t, int64(1), metrics.Stats.Timeouts)
}

func TestWriteRunMetricsRequiresDir(t *testing.T) {
	_, err := utils.WriteRunMetrics("", "verify", "id", core.PipelineStats{})
	assert.Error(t, err)
}
