package ocr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-doc-ingest/internal/logger"
	"go-doc-ingest/pkg/models"
)

// inProcessQueue runs vision jobs on background goroutines behind the
// submit/poll contract. A bounded semaphore keeps concurrent remote calls
// under the configured limit.
type inProcessQueue struct {
	vision VisionModel
	sem    chan struct{}

	mu      sync.Mutex
	jobs    map[string]chan models.VisionJobResult
	counter atomic.Uint64
}

// NewInProcessQueue wraps a VisionModel in an async job queue with at most
// concurrency in-flight remote calls.
func NewInProcessQueue(vision VisionModel, concurrency int) VisionQueue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &inProcessQueue{
		vision: vision,
		sem:    make(chan struct{}, concurrency),
		jobs:   make(map[string]chan models.VisionJobResult),
	}
}

func (q *inProcessQueue) Submit(ctx context.Context, imageData []byte, instruction string) (string, error) {
	jobID := fmt.Sprintf("vision-%d", q.counter.Add(1))
	done := make(chan models.VisionJobResult, 1)

	q.mu.Lock()
	q.jobs[jobID] = done
	q.mu.Unlock()

	go func() {
		select {
		case q.sem <- struct{}{}:
			defer func() { <-q.sem }()
		case <-ctx.Done():
			done <- models.VisionJobResult{Error: ctx.Err().Error()}
			return
		}

		text, err := q.vision.Extract(ctx, imageData, instruction)
		if err != nil {
			logger.WithError(err).WithField("job_id", jobID).Warn("Vision job failed")
			done <- models.VisionJobResult{Error: err.Error()}
			return
		}
		done <- models.VisionJobResult{
			Success:    true,
			Text:       text,
			Confidence: models.AssumedVisionConfidence,
		}
	}()

	return jobID, nil
}

func (q *inProcessQueue) WaitForResult(ctx context.Context, jobID string, timeout time.Duration) models.VisionJobResult {
	q.mu.Lock()
	done, ok := q.jobs[jobID]
	q.mu.Unlock()
	if !ok {
		return models.VisionJobResult{Error: "unknown job: " + jobID}
	}

	defer func() {
		q.mu.Lock()
		delete(q.jobs, jobID)
		q.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		return result
	case <-timer.C:
		return models.VisionJobResult{Error: "vision job timed out after " + timeout.String()}
	case <-ctx.Done():
		return models.VisionJobResult{Error: ctx.Err().Error()}
	}
}
