package models

// Options provides per-call configuration for document processing
type Options struct {
	// Tier selection
	UseVisionOnly       bool
	UseAsyncVisionQueue bool

	// Local OCR tuning
	LocalConfidenceThreshold float64 // 0-100
	LocalEngineDPI           int
	Languages                []string

	// Vision escalation tuning
	VisionMaxDimension int // long-side pixels for the escalation buffer

	// PDF handling
	MaxPDFPages int
	RasterDPI   int

	// Size caps
	MaxFileSize int64
}

// DefaultOptions returns the canonical processing options. The local
// confidence threshold is 75 on every path.
func DefaultOptions() Options {
	return Options{
		UseVisionOnly:            false,
		UseAsyncVisionQueue:      true,
		LocalConfidenceThreshold: 75,
		LocalEngineDPI:           300,
		Languages:                []string{"pol"},
		VisionMaxDimension:       768,
		MaxPDFPages:              10,
		RasterDPI:                200,
		MaxFileSize:              10 * 1024 * 1024,
	}
}

// VisionOnlyOptions returns options that bypass the local OCR tier
func VisionOnlyOptions() Options {
	opts := DefaultOptions()
	opts.UseVisionOnly = true
	return opts
}

// WithConfidenceThreshold sets the accept-local confidence gate
func (o Options) WithConfidenceThreshold(threshold float64) Options {
	o.LocalConfidenceThreshold = threshold
	return o
}

// WithLanguages sets the OCR language hints
func (o Options) WithLanguages(langs ...string) Options {
	o.Languages = append([]string(nil), langs...)
	return o
}

// WithVisionMaxDimension bounds the escalation buffer size
func (o Options) WithVisionMaxDimension(px int) Options {
	o.VisionMaxDimension = px
	return o
}

// WithMaxPDFPages caps how many PDF pages are rasterized
func (o Options) WithMaxPDFPages(pages int) Options {
	o.MaxPDFPages = pages
	return o
}

// WithoutAsyncQueue forces direct vision calls even when a queue is wired
func (o Options) WithoutAsyncQueue() Options {
	o.UseAsyncVisionQueue = false
	return o
}
