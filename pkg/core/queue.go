/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: queue.go
Description: Work queue for the triage worker pools. The queue is filled once at
construction and only drained afterwards, which lets workers terminate as soon as a
pop finds it empty.
*/

package core

import (
	"sync"
	"time"
)

// WorkQueue is a thread-safe FIFO of sample paths.
// It has no insert operation: every item must be known before the workers start.
type WorkQueue struct {
	items []string
	next  int
	mu    sync.Mutex

	// Performance tracking
	removals   int64
	lastAccess time.Time
}

// NewWorkQueue creates a queue holding a copy of items in order
func NewWorkQueue(items []string) *WorkQueue {
	q := &WorkQueue{items: make([]string, len(items))}
	copy(q.items, items)
	return q
}

// Pop atomically removes the next item. ok is false once the queue is empty.
func (q *WorkQueue) Pop() (item string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.items) {
		return "", false
	}
	item = q.items[q.next]
	q.items[q.next] = ""
	q.next++
	q.removals++
	q.lastAccess = time.Now()
	return item, true
}

// Size returns the number of items not yet popped
func (q *WorkQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.next
}

// IsEmpty returns true if every item has been popped
func (q *WorkQueue) IsEmpty() bool {
	return q.Size() == 0
}

// GetStats returns queue statistics
func (q *WorkQueue) GetStats() map[string]interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := make(map[string]interface{})
	stats["size"] = len(q.items) - q.next
	stats["total"] = len(q.items)
	stats["removals"] = q.removals
	stats["last_access"] = q.lastAccess
	return stats
}
