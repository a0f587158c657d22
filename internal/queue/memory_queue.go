// Package queue runs background jobs that archive expired ride boards.
package queue

import (
	"context"
	"sync"

	"carpool/internal/models"
)

// ArchiveJob carries the rides of one expired day.
type ArchiveJob struct {
	ID         string
	Day        string
	Rides      []models.Ride
	RetryCount int
}

// MemoryQueue is an in-memory job queue for archive jobs.
type MemoryQueue struct {
	jobs     chan ArchiveJob
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewMemoryQueue creates a new in-memory queue with the given capacity.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		jobs:     make(chan ArchiveJob, capacity),
		capacity: capacity,
	}
}

// Enqueue adds a job to the queue. Returns error if queue is full or closed.
// The read lock is held for the whole send so Close cannot race it.
func (q *MemoryQueue) Enqueue(job ArchiveJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue returns the next job, blocking until one is available.
func (q *MemoryQueue) Dequeue(ctx context.Context) (ArchiveJob, error) {
	select {
	case <-ctx.Done():
		return ArchiveJob{}, ctx.Err()
	case job, ok := <-q.jobs:
		if !ok {
			return ArchiveJob{}, ErrQueueClosed
		}
		return job, nil
	}
}

// Close closes the queue. Jobs already queued can still be dequeued.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Len returns the current number of jobs in the queue.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// Capacity returns the queue capacity.
func (q *MemoryQueue) Capacity() int {
	return q.capacity
}
