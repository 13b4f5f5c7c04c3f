//go:build cgo

package ocr

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/logger"
	"go-doc-ingest/pkg/models"
)

const localEngineName = "tesseract"

// tesseractEngine wraps gosseract. The underlying client is not safe for
// concurrent use, so recognition is serialized behind a mutex; page-level
// parallelism comes from running multiple engines, not sharing one.
type tesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine creates a LocalEngine backed by the tesseract library.
func NewTesseractEngine() LocalEngine {
	return &tesseractEngine{client: gosseract.NewClient()}
}

func (e *tesseractEngine) Recognize(ctx context.Context, imageData []byte, languages []string, dpi int) (models.OCRAttempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.OCRAttempt{}, err
	}

	if len(languages) > 0 {
		if err := e.client.SetLanguage(languages...); err != nil {
			return models.OCRAttempt{}, apperrors.NewCollaboratorUnavailableError(
				"tesseract language data not available",
				"install the tesseract language packs for: "+strings.Join(languages, ", "),
				err,
			)
		}
	}
	if dpi > 0 {
		if err := e.client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(dpi)); err != nil {
			logger.WithError(err).Warn("Failed to set OCR DPI hint")
		}
	}

	if err := e.client.SetImageFromBytes(imageData); err != nil {
		return models.OCRAttempt{}, apperrors.NewDecodeFailureError("tesseract could not read image", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return models.OCRAttempt{}, apperrors.NewInternalError("tesseract recognition failed", err)
	}
	text = strings.TrimSpace(text)

	confidence := e.meanWordConfidence()

	logger.WithFields(logrus.Fields{
		"engine":     localEngineName,
		"confidence": confidence,
		"chars":      len(text),
	}).Debug("Local OCR attempt complete")

	return models.OCRAttempt{
		Text:       text,
		Confidence: confidence,
		Engine:     localEngineName,
	}, nil
}

// meanWordConfidence averages per-word confidences. Zero when the engine
// found no words at all.
func (e *tesseractEngine) meanWordConfidence() float64 {
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

func (e *tesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
