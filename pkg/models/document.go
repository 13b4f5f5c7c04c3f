package models

// ProcessingMethod identifies which path produced the extracted text
type ProcessingMethod string

const (
	// MethodDirect for plain text passed through unchanged
	MethodDirect ProcessingMethod = "direct"
	// MethodTextExtraction for native text layers (PDF, DOCX, ODT)
	MethodTextExtraction ProcessingMethod = "text-extraction"
	// MethodOCR for text recognized by the local engine
	MethodOCR ProcessingMethod = "ocr"
	// MethodVision for text extracted by the remote vision model
	MethodVision ProcessingMethod = "vision"
	// MethodSTT is reserved for the external audio transcription collaborator
	MethodSTT ProcessingMethod = "stt"
)

// DocumentMetadata describes how a document was processed
type DocumentMetadata struct {
	FileName         string           `json:"file_name"`
	FileType         string           `json:"file_type"`
	MimeType         string           `json:"mime_type"`
	FileSize         int64            `json:"file_size"`
	PageCount        int              `json:"page_count,omitempty"`
	HasImageStreams  bool             `json:"has_image_streams,omitempty"`
	ProcessingMethod ProcessingMethod `json:"processing_method"`
	Confidence       float64          `json:"confidence,omitempty"`
	Language         string           `json:"language,omitempty"`
	OCREngine        string           `json:"ocr_engine,omitempty"`

	// Per-page accounting for multi-page documents
	FailedPages  int         `json:"failed_pages,omitempty"`
	SkippedPages int         `json:"skipped_pages,omitempty"`
	PageStates   []TierState `json:"page_states,omitempty"`

	// Agreement between local OCR and vision output when both tiers ran,
	// expressed as a normalized edit-distance similarity in [0,1]
	TierAgreement float64 `json:"tier_agreement,omitempty"`

	ProcessingTimeSec float64 `json:"processing_time_sec,omitempty"`
}

// ProcessedDocument is the final output of the ingestion pipeline.
// Invariant: if Success is false, Text is empty.
type ProcessedDocument struct {
	Success    bool                `json:"success"`
	Text       string              `json:"text"`
	Metadata   DocumentMetadata    `json:"metadata"`
	Normalized *NormalizedMetadata `json:"normalized,omitempty"`
	// Error carries the failure reason when Success is false, or a
	// partial-page diagnostic when some pages of a success failed.
	Error string `json:"error,omitempty"`
}
