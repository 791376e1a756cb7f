// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is canceled; implementations own their own tick
// schedule and must return promptly on cancellation.
type Worker interface {
	Run(ctx context.Context)
}

type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers into a single runnable group.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run launches every worker in its own goroutine and returns immediately.
// The workers stop when ctx is canceled.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		go worker.Run(ctx)
	}
}
