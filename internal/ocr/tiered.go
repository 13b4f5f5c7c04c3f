package ocr

import (
	"context"
	"strings"
	"time"

	"github.com/arbovm/levenshtein"
	"github.com/sirupsen/logrus"

	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/logger"
	"go-doc-ingest/pkg/models"
)

// minAcceptTextLen is the minimum local-OCR text length for the accept-local
// gate. Shorter output at any confidence escalates to the vision tier.
const minAcceptTextLen = 30

// PageInput carries the two renditions of one page image: the restored
// buffer for the local engine and the downscaled original for the vision
// model (restoration artifacts hurt vision models more than they help).
type PageInput struct {
	LocalImage  []byte
	VisionImage []byte
	Stats       models.ImageQualityStats
}

// PageOutcome is the terminal state of tiered recognition for one page.
// Agreement is the levenshtein similarity between tiers when both produced
// text, otherwise -1.
type PageOutcome struct {
	State      models.TierState
	Text       string
	Confidence float64
	Engine     string
	Agreement  float64
	Err        error
}

// TieredEngine runs the local-first, vision-fallback recognition ladder.
type TieredEngine struct {
	local         LocalEngine
	vision        VisionModel
	queue         VisionQueue
	visionTimeout time.Duration
}

func NewTieredEngine(local LocalEngine, vision VisionModel, queue VisionQueue, visionTimeout time.Duration) *TieredEngine {
	return &TieredEngine{local: local, vision: vision, queue: queue, visionTimeout: visionTimeout}
}

// ProcessPage walks the tier ladder for a single page and always lands in
// exactly one terminal state. Errors inside a tier demote to the next tier
// rather than propagate.
func (e *TieredEngine) ProcessPage(ctx context.Context, in PageInput, opts models.Options) PageOutcome {
	if in.Stats.IsBlank() {
		return PageOutcome{State: models.TierSkippedBlank, Agreement: -1}
	}

	var localText string

	if !opts.UseVisionOnly && e.local != nil {
		attempt, err := e.local.Recognize(ctx, in.LocalImage, opts.Languages, opts.LocalEngineDPI)
		if err != nil {
			logger.WithError(err).Debug("Local OCR tier failed, escalating")
		} else {
			localText = attempt.Text
			if acceptLocal(attempt, opts.LocalConfidenceThreshold) {
				return PageOutcome{
					State:      models.TierAcceptedLocal,
					Text:       attempt.Text,
					Confidence: attempt.Confidence,
					Engine:     attempt.Engine,
					Agreement:  -1,
				}
			}
			logger.WithFields(logrus.Fields{
				"confidence": attempt.Confidence,
				"threshold":  opts.LocalConfidenceThreshold,
				"chars":      len(attempt.Text),
			}).Debug("Local OCR below acceptance gate, escalating to vision")
		}
	}

	visionText, visionConfidence, err := e.runVision(ctx, in.VisionImage, opts)
	if err == nil && strings.TrimSpace(visionText) != "" {
		outcome := PageOutcome{
			State:      models.TierAcceptedVision,
			Text:       strings.TrimSpace(visionText),
			Confidence: visionConfidence,
			Engine:     "vision",
			Agreement:  -1,
		}
		if localText != "" {
			outcome.Agreement = similarity(localText, outcome.Text)
		}
		return outcome
	}

	// Both tiers were attempted and the confidence gate already rejected
	// the local text; a vision error or empty response is terminal.
	return PageOutcome{State: models.TierFailed, Agreement: -1, Err: err}
}

// acceptLocal is the confidence gate: high confidence alone is not enough,
// the text must also be long enough to be a real page and not a stray mark.
func acceptLocal(attempt models.OCRAttempt, threshold float64) bool {
	return attempt.Confidence >= threshold && len(attempt.Text) > minAcceptTextLen
}

func (e *TieredEngine) runVision(ctx context.Context, imageData []byte, opts models.Options) (string, float64, error) {
	if opts.UseAsyncVisionQueue && e.queue != nil {
		jobID, err := e.queue.Submit(ctx, imageData, DefaultInstruction)
		if err != nil {
			return "", 0, err
		}
		result := e.queue.WaitForResult(ctx, jobID, e.visionTimeout)
		if !result.Success {
			return "", 0, &visionJobError{message: result.Error}
		}
		return result.Text, result.Confidence, nil
	}

	if e.vision == nil {
		return "", 0, apperrors.NewCollaboratorUnavailableError(
			"no vision model configured",
			"wire a vision model or queue into the tiered engine", nil)
	}
	// Bound the direct call the same way the queue path is bounded, so a
	// hung remote endpoint cannot stall the page forever.
	if e.visionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.visionTimeout)
		defer cancel()
	}
	text, err := e.vision.Extract(ctx, imageData, DefaultInstruction)
	if err != nil {
		return "", 0, err
	}
	return text, models.AssumedVisionConfidence, nil
}

type visionJobError struct{ message string }

func (e *visionJobError) Error() string { return "vision job: " + e.message }

// similarity maps levenshtein distance to [0,1]: 1 means identical text.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.Distance(a, b)
	return 1 - float64(d)/float64(longest)
}
