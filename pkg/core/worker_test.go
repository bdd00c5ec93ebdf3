/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker_test.go
Description: Tests for pool draining, worker statistics, pipeline counters and reporters.
*/

package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kleascm/akaylee-triage/pkg/core"
	"github.com/kleascm/akaylee-triage/pkg/interfaces"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestPoolDrainsEveryItemExactlyOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			items := make([]string, 50)
			for i := range items {
				items[i] = fmt.Sprintf("item-%d", i)
			}
			queue := core.NewWorkQueue(items)

			var mu sync.Mutex
			seen := make(map[string]int)
			pool := core.NewPool("test", workers, quietLogger())
			result := pool.Drain(context.Background(), queue, func(ctx context.Context, w *core.Worker, item string) error {
				mu.Lock()
				seen[item]++
				mu.Unlock()
				return nil
			})

			require.Len(t, result, workers)
			assert.True(t, queue.IsEmpty())
			assert.Len(t, seen, len(items))
			for item, count := range seen {
				assert.Equal(t, 1, count, item)
			}

			var processed int64
			for _, w := range result {
				processed += w.GetStats()["processed"].(int64)
			}
			assert.Equal(t, int64(len(items)), processed)
		})
	}
}

func TestPoolHandlerErrorsDoNotStopWorkers(t *testing.T) {
	queue := core.NewWorkQueue([]string{"ok-1", "bad", "ok-2", "bad", "ok-3"})
	pool := core.NewPool("test", 1, quietLogger())

	var handled []string
	workers := pool.Drain(context.Background(), queue, func(ctx context.Context, w *core.Worker, item string) error {
		handled = append(handled, item)
		if item == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, []string{"ok-1", "bad", "ok-2", "bad", "ok-3"}, handled)
	stats := workers[0].GetStats()
	assert.Equal(t, int64(5), stats["processed"])
	assert.Equal(t, int64(2), stats["failures"])
}

func TestPoolEmptyQueue(t *testing.T) {
	pool := core.NewPool("test", 4, quietLogger())
	called := false
	pool.Drain(context.Background(), core.NewWorkQueue(nil), func(ctx context.Context, w *core.Worker, item string) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestNewPoolClampsWorkers(t *testing.T) {
	pool := core.NewPool("test", 0, nil)
	assert.Equal(t, 1, pool.Workers)
	assert.NotEmpty(t, pool.RunID)
	assert.NotEqual(t, pool.RunID, core.NewPool("test", -2, nil).RunID)
}

func TestPoolLogsWithPoolField(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pool := core.NewPool("verify", 2, logger)
	pool.Drain(context.Background(), core.NewWorkQueue([]string{"x"}), func(ctx context.Context, w *core.Worker, item string) error {
		w.Logger().Info("handling")
		return nil
	})

	require.NotEmpty(t, hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		assert.Equal(t, "verify", entry.Data["pool"])
		assert.Equal(t, pool.RunID, entry.Data["run_id"])
	}
	assert.Equal(t, "Pool finished", hook.LastEntry().Message)
}

func TestPipelineStatsConcurrentIncrements(t *testing.T) {
	stats := core.NewPipelineStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.IncrementProcessed()
			stats.IncrementAccepted()
			stats.IncrementFailures()
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.Equal(t, int64(50), snap.Processed)
	assert.Equal(t, int64(50), snap.Accepted)
	assert.Equal(t, int64(50), snap.Failures)
	assert.Zero(t, snap.Invalid)
	assert.Equal(t, stats.StartTime, snap.StartTime)
}

func TestMultiReporterFansOut(t *testing.T) {
	a := &core.RecordingReporter{}
	b := &core.RecordingReporter{}
	multi := core.MultiReporter{a, b, core.NewLoggerReporter(quietLogger())}

	multi.OnOutcome(interfaces.VerificationOutcome{Sample: "s1", Kind: interfaces.OutcomeInvalid})
	multi.OnAccepted("s2")
	multi.OnCrashRecord(interfaces.CrashRecord{Sample: "s3"})
	multi.OnMinimized("in", "out")
	multi.OnFailure(interfaces.NewInvocationFailure(interfaces.StageVerify, "s4", errors.New("x")))

	for _, r := range []*core.RecordingReporter{a, b} {
		assert.Len(t, r.Outcomes, 1)
		assert.Equal(t, []string{"s2"}, r.Accepted)
		assert.Len(t, r.Records, 1)
		assert.Equal(t, []string{"out"}, r.Minimized)
		require.Len(t, r.Failures, 1)
		assert.Equal(t, "s4", r.Failures[0].Sample)
	}
}
