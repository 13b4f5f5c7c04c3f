package models

// OCRAttempt is the transient result of one recognition attempt on one
// image or page, from either tier.
type OCRAttempt struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100, engine-reported
	Engine     string  `json:"engine"`
}

// AssumedVisionConfidence is reported for vision responses that do not
// carry their own score.
const AssumedVisionConfidence = 90.0

// TierState is the terminal state of the tiered OCR decision for one unit
// of work (one image or one PDF page).
type TierState string

const (
	TierSkippedBlank   TierState = "skipped-blank"
	TierAcceptedLocal  TierState = "accepted-local"
	TierAcceptedVision TierState = "accepted-vision"
	TierFailed         TierState = "failed"
)

// VisionJobResult is returned when polling an asynchronous vision queue.
type VisionJobResult struct {
	Success    bool    `json:"success"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}
