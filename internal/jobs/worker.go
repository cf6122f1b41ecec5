package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor runs one batch of background work per poll tick. The
// document ingestion pass is the implementation in this service.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed poll interval until stopped,
// so pending documents get picked up without an explicit process call.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the polling loop and blocks until the context is cancelled
// or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Ingestion worker started with poll interval: %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Ingestion worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Ingestion worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("Error processing pending documents: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the in-flight batch to finish.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Ingestion worker shutdown complete")
}
