/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Worker and pool implementation for the triage pipeline. A pool starts a
fixed number of workers that drain a shared WorkQueue until it is empty. Subprocess work
happens outside every lock so workers run fully in parallel.
*/

package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Handler processes one work item. A returned error marks the item as failed;
// it never stops the worker.
type Handler func(ctx context.Context, w *Worker, item string) error

// Worker drains a queue sequentially
type Worker struct {
	ID     int           // Worker index within its pool
	logger *logrus.Entry // Worker-specific logger

	// Performance tracking
	processed int64     // Items handled
	failures  int64     // Items whose handler returned an error
	startTime time.Time // When the worker started
	endTime   time.Time // When the worker saw an empty queue

	mu sync.RWMutex
}

// NewWorker creates a new worker instance
func NewWorker(id int, logger *logrus.Entry) *Worker {
	return &Worker{
		ID:     id,
		logger: logger.WithField("worker", id),
	}
}

// Logger returns the worker's logger
func (w *Worker) Logger() *logrus.Entry {
	return w.logger
}

// Run pops items until the queue is empty, calling handler for each
func (w *Worker) Run(ctx context.Context, queue *WorkQueue, handler Handler) {
	w.mu.Lock()
	w.startTime = time.Now()
	w.mu.Unlock()

	w.logger.Debug("Worker started")
	for {
		item, ok := queue.Pop()
		if !ok {
			break
		}
		err := handler(ctx, w, item)

		w.mu.Lock()
		w.processed++
		if err != nil {
			w.failures++
		}
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.endTime = time.Now()
	processed := w.processed
	w.mu.Unlock()

	w.logger.WithField("processed", processed).Debug("Worker finished, queue empty")
}

// GetStats returns worker performance statistics
func (w *Worker) GetStats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["id"] = w.ID
	stats["processed"] = w.processed
	stats["failures"] = w.failures
	stats["start_time"] = w.startTime

	end := w.endTime
	if end.IsZero() {
		end = time.Now()
	}
	uptime := end.Sub(w.startTime)
	stats["uptime"] = uptime
	if uptime > 0 {
		stats["items_per_second"] = float64(w.processed) / uptime.Seconds()
	}
	return stats
}

// Pool runs a fixed number of workers over one queue
type Pool struct {
	Name    string // Pool name used in log fields
	Workers int    // Number of parallel workers
	RunID   string // Unique identifier of this pool run

	logger *logrus.Logger
}

// NewPool creates a pool with the given size. Sizes below one are clamped to one.
func NewPool(name string, workers int, logger *logrus.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pool{
		Name:    name,
		Workers: workers,
		RunID:   uuid.New().String(),
		logger:  logger,
	}
}

// Drain starts the workers and blocks until all of them have seen an empty queue.
// The queue must be fully populated before Drain is called. There is no stop
// signal: once started, every queued item is handed to handler. A cancelled ctx
// is passed through to handler so that pending invocations fail fast.
func (p *Pool) Drain(ctx context.Context, queue *WorkQueue, handler Handler) []*Worker {
	entry := p.logger.WithFields(logrus.Fields{
		"pool":   p.Name,
		"run_id": p.RunID,
	})
	entry.WithFields(logrus.Fields{
		"workers": p.Workers,
		"items":   queue.Size(),
	}).Info("Pool started")

	startTime := time.Now()
	workers := make([]*Worker, p.Workers)
	var g errgroup.Group
	for i := range workers {
		w := NewWorker(i, entry)
		workers[i] = w
		g.Go(func() error {
			w.Run(ctx, queue, handler)
			return nil
		})
	}
	g.Wait()

	entry.WithField("duration", time.Since(startTime)).Info("Pool finished")
	return workers
}
