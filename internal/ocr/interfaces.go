// Package ocr implements the tiered text-recognition engine: a local
// CPU-only OCR pass first, escalating to a remote vision model when the
// local result is not good enough.
package ocr

import (
	"context"
	"time"

	"go-doc-ingest/pkg/models"
)

// LocalEngine is a CPU-only OCR engine returning text plus a confidence
// score in [0,100].
type LocalEngine interface {
	Recognize(ctx context.Context, imageData []byte, languages []string, dpi int) (models.OCRAttempt, error)
	Close() error
}

// VisionModel transcribes an image via a remote vision-language model.
type VisionModel interface {
	Extract(ctx context.Context, imageData []byte, instruction string) (string, error)
}

// VisionQueue is the async variant of the vision path: submit returns a job
// handle, WaitForResult polls it to completion or timeout.
type VisionQueue interface {
	Submit(ctx context.Context, imageData []byte, instruction string) (string, error)
	WaitForResult(ctx context.Context, jobID string, timeout time.Duration) models.VisionJobResult
}
