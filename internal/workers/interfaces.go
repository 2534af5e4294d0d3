// Package workers runs the long-lived background loops of the client.
// Every [Worker] runs in its own goroutine under a shared errgroup; the
// first worker that fails cancels the others.
package workers

import "context"

// Worker is a background loop. Run blocks until ctx is done or the loop
// fails. Returning nil after ctx is cancelled is a clean stop.
//
// Example implementation:
//
//	type tickWorker struct{}
//
//	func (w *tickWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}
