/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: collector.go
Description: Append-only result collection shared by the workers of a pool.
*/

package core

import "sync"

// ResultCollector gathers results from concurrent workers.
// Order across workers is whatever the interleaving produced.
type ResultCollector[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewResultCollector creates an empty collector
func NewResultCollector[T any]() *ResultCollector[T] {
	return &ResultCollector[T]{}
}

// Append adds one result
func (c *ResultCollector[T]) Append(item T) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

// Items returns a copy of everything collected so far
func (c *ResultCollector[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected results
func (c *ResultCollector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
