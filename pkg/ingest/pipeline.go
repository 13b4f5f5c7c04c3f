// Package ingest is the public entry point of the document pipeline: it
// turns an uploaded file buffer into clean extracted text plus normalized
// bibliographic metadata.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"go-doc-ingest/internal/analyzer"
	"go-doc-ingest/internal/docx"
	apperrors "go-doc-ingest/internal/errors"
	"go-doc-ingest/internal/format"
	"go-doc-ingest/internal/logger"
	"go-doc-ingest/internal/metadata"
	"go-doc-ingest/internal/observer"
	"go-doc-ingest/internal/ocr"
	"go-doc-ingest/internal/pdf"
	"go-doc-ingest/internal/restore"
	"go-doc-ingest/internal/worker"
	"go-doc-ingest/pkg/models"
)

// maxAudioFileSize is the cap for inputs destined for the external audio
// transcription collaborator.
const maxAudioFileSize = 25 * 1024 * 1024

// PageEngine runs tiered recognition for one page image.
type PageEngine interface {
	ProcessPage(ctx context.Context, in ocr.PageInput, opts models.Options) ocr.PageOutcome
}

// Deps are the collaborators injected into a Pipeline. Engine is required;
// Rasterizer is required for the scanned-PDF path; the rest default to
// working implementations when nil.
type Deps struct {
	Engine     PageEngine
	Rasterizer pdf.Rasterizer
	Analyzer   analyzer.ImageAnalyzer
	Workers    *worker.Pool
	Events     observer.Subject
}

// Pipeline converts uploaded file buffers into processed documents.
type Pipeline struct {
	engine     PageEngine
	rasterizer pdf.Rasterizer
	analyzer   analyzer.ImageAnalyzer
	workers    *worker.Pool
	events     observer.Subject
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(deps Deps) *Pipeline {
	p := &Pipeline{
		engine:     deps.Engine,
		rasterizer: deps.Rasterizer,
		analyzer:   deps.Analyzer,
		workers:    deps.Workers,
		events:     deps.Events,
	}
	if p.analyzer == nil {
		p.analyzer = analyzer.NewImageAnalyzer()
	}
	if p.workers == nil {
		p.workers = worker.NewPool(0)
	}
	p.workers.Start()
	return p
}

// ProcessFile is the single entry point. It never panics out: every failure
// becomes a success=false result with an error string.
func (p *Pipeline) ProcessFile(ctx context.Context, data []byte, fileName, mimeType string, opts models.Options) (doc *models.ProcessedDocument) {
	start := time.Now()
	opts = withDefaults(opts)

	p.notify(ctx, observer.IngestEvent{
		EventType: observer.DocumentStarted,
		Timestamp: start,
		FileName:  fileName,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).WithField("file_name", fileName).Error("Processing panicked")
			doc = p.failed(fileName, mimeType, "unknown", int64(len(data)), "",
				apperrors.NewInternalError(fmt.Sprintf("unexpected failure: %v", r), nil))
		}
		doc.Metadata.ProcessingTimeSec = time.Since(start).Seconds()
		event := observer.IngestEvent{
			Timestamp:      time.Now(),
			FileName:       fileName,
			ProcessingTime: time.Since(start),
			Success:        doc.Success,
			ErrorMessage:   doc.Error,
		}
		if doc.Success {
			event.EventType = observer.DocumentCompleted
		} else {
			event.EventType = observer.DocumentFailed
		}
		p.notify(ctx, event)
	}()

	strategy, mime, err := format.Classify(data, fileName, mimeType)
	if err != nil {
		return p.failed(fileName, mime, "unknown", int64(len(data)), "", err)
	}
	fileType := string(strategy)

	sizeLimit := opts.MaxFileSize
	if strategy == format.StrategyAudioVideo {
		sizeLimit = maxAudioFileSize
	}
	if int64(len(data)) > sizeLimit {
		return p.failed(fileName, mime, fileType, int64(len(data)), "",
			apperrors.NewOversizeInputError(int64(len(data)), sizeLimit))
	}

	logger.WithFields(logrus.Fields{
		"file_name": fileName,
		"mime_type": mime,
		"strategy":  strategy,
		"bytes":     len(data),
	}).Info("Processing document")

	switch strategy {
	case format.StrategyText:
		return p.finish(fileName, mime, fileType, data, string(data), models.DocumentMetadata{
			ProcessingMethod: models.MethodDirect,
		})

	case format.StrategyDocx:
		return p.processWordDocument(data, fileName, mime, fileType)

	case format.StrategyImage:
		return p.processImage(ctx, data, fileName, mime, fileType, opts)

	case format.StrategyPDF:
		return p.processPDF(ctx, data, fileName, mime, fileType, opts)

	case format.StrategyAudioVideo:
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodSTT,
			apperrors.NewCollaboratorUnavailableError(
				"audio/video input requires the transcription collaborator",
				"route this file to the speech-to-text service",
				nil,
			))

	default:
		return p.failed(fileName, mime, fileType, int64(len(data)), "",
			apperrors.NewUnsupportedFormatError("no processing path for "+mime, nil))
	}
}

// ExtractNormalizedMetadata applies the rule-based normalizer to an already
// extracted title and body.
func ExtractNormalizedMetadata(title, content string) models.NormalizedMetadata {
	return metadata.Extract(title, content)
}

func (p *Pipeline) processWordDocument(data []byte, fileName, mime, fileType string) *models.ProcessedDocument {
	var title, text string
	var err error
	if strings.Contains(mime, "opendocument") {
		title, text, err = docx.ExtractODT(data)
	} else {
		title, text, err = docx.ExtractDocx(data)
	}
	if err != nil {
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodTextExtraction,
			apperrors.NewDecodeFailureError("word-processor extraction failed", err))
	}
	doc := p.finish(fileName, mime, fileType, data, text, models.DocumentMetadata{
		ProcessingMethod: models.MethodTextExtraction,
	})
	if title != "" {
		normalized := metadata.Extract(title, text)
		doc.Normalized = &normalized
	}
	return doc
}

func (p *Pipeline) processImage(ctx context.Context, data []byte, fileName, mime, fileType string, opts models.Options) *models.ProcessedDocument {
	in := p.preparePage(data, opts)
	outcome := p.engine.ProcessPage(ctx, in, opts)

	switch outcome.State {
	case models.TierSkippedBlank:
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodOCR,
			apperrors.NewEmptyExtractionError("image is blank"))
	case models.TierFailed:
		err := outcome.Err
		if err == nil {
			err = apperrors.NewEmptyExtractionError("no tier produced usable text")
		}
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodOCR, err)
	}

	meta := models.DocumentMetadata{
		ProcessingMethod: methodForState(outcome.State),
		Confidence:       outcome.Confidence,
		OCREngine:        outcome.Engine,
		PageStates:       []models.TierState{outcome.State},
	}
	if outcome.Agreement >= 0 {
		meta.TierAgreement = outcome.Agreement
	}
	return p.finish(fileName, mime, fileType, data, outcome.Text, meta)
}

func (p *Pipeline) processPDF(ctx context.Context, data []byte, fileName, mime, fileType string, opts models.Options) *models.ProcessedDocument {
	extraction, err := pdf.Extract(data)
	if err != nil {
		// Broken structure is not fatal: the rasterizer often still
		// renders what pdfcpu cannot parse.
		logger.WithError(err).Warn("PDF text extraction failed, falling back to rasterization")
		return p.processScannedPDF(ctx, data, fileName, mime, fileType, opts.MaxPDFPages, opts)
	}

	verdict := pdf.ClassifyTextLayer(extraction.Text, extraction.PageCount)
	if verdict.Usable {
		return p.finish(fileName, mime, fileType, data, extraction.Text, textLayerMetadata(extraction))
	}

	logger.WithFields(logrus.Fields{
		"file_name":  fileName,
		"reason":     verdict.Reason,
		"pages":      extraction.PageCount,
		"has_images": extraction.HasImages,
	}).Info("PDF text layer unusable, rasterizing")

	pageCount := extraction.PageCount
	if pageCount <= 0 {
		pageCount = opts.MaxPDFPages
	}
	return p.processScannedPDF(ctx, data, fileName, mime, fileType, pageCount, opts)
}

// textLayerMetadata describes a PDF served straight from its text layer.
// The image-stream flag is kept so callers can spot mixed documents whose
// figures were never transcribed.
func textLayerMetadata(extraction *pdf.Extraction) models.DocumentMetadata {
	return models.DocumentMetadata{
		ProcessingMethod: models.MethodTextExtraction,
		PageCount:        extraction.PageCount,
		HasImageStreams:  extraction.HasImages,
	}
}

func (p *Pipeline) processScannedPDF(ctx context.Context, data []byte, fileName, mime, fileType string, pageCount int, opts models.Options) *models.ProcessedDocument {
	if p.rasterizer == nil {
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodOCR,
			apperrors.NewCollaboratorUnavailableError("no rasterizer configured",
				"wire a PDF rasterizer into the pipeline", nil))
	}

	lastPage := pageCount
	if lastPage > opts.MaxPDFPages {
		lastPage = opts.MaxPDFPages
	}
	pages, err := p.rasterizer.Rasterize(ctx, data, 1, lastPage, opts.RasterDPI)
	if err != nil {
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodOCR, err)
	}
	if len(pages) == 0 {
		return p.failed(fileName, mime, fileType, int64(len(data)), models.MethodOCR,
			apperrors.NewEmptyExtractionError("rasterizer produced no pages"))
	}

	summary := p.processPages(ctx, pages, opts)

	meta := models.DocumentMetadata{
		ProcessingMethod: summary.method,
		PageCount:        len(pages),
		Confidence:       summary.confidence,
		OCREngine:        summary.engine,
		FailedPages:      summary.failed,
		SkippedPages:     summary.skipped,
		PageStates:       summary.states,
		TierAgreement:    summary.agreement,
	}

	if summary.text == "" {
		return p.failed(fileName, mime, fileType, int64(len(data)), summary.method,
			apperrors.NewEmptyExtractionError("text extraction failed on every page"))
	}
	doc := p.finish(fileName, mime, fileType, data, summary.text, meta)
	if summary.failed > 0 {
		// Partial page failure stays success=true; the diagnostic rides
		// along so callers see which kind of degradation happened.
		doc.Error = apperrors.NewPartialPageFailureError(summary.failed, len(pages)).Error()
	}
	return doc
}

// preparePage builds the two page renditions for tiered recognition: the
// restored buffer for local OCR and a downscaled original for the vision
// model.
func (p *Pipeline) preparePage(data []byte, opts models.Options) ocr.PageInput {
	stats := p.analyzer.AnalyzeBytes(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Undecodable buffer: hand the raw bytes to the engines and let
		// them make their own call.
		return ocr.PageInput{LocalImage: data, VisionImage: data, Stats: stats}
	}

	recipe := restore.PlanRestoration(stats)
	restored := restore.Execute(img, recipe)
	local := encodePNG(restored, data)

	fitted := imaging.Fit(img, opts.VisionMaxDimension, opts.VisionMaxDimension, imaging.Lanczos)
	vision := encodePNG(fitted, data)

	return ocr.PageInput{LocalImage: local, VisionImage: vision, Stats: stats}
}

func encodePNG(img image.Image, fallback []byte) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fallback
	}
	return buf.Bytes()
}

// finish assembles a successful result and runs metadata normalization.
func (p *Pipeline) finish(fileName, mime, fileType string, data []byte, text string, meta models.DocumentMetadata) *models.ProcessedDocument {
	meta.FileName = fileName
	meta.FileType = fileType
	meta.MimeType = mime
	meta.FileSize = int64(len(data))

	doc := &models.ProcessedDocument{
		Success:  true,
		Text:     text,
		Metadata: meta,
	}
	normalized := metadata.Extract(firstLine(text), text)
	doc.Normalized = &normalized
	return doc
}

// failed assembles a success=false result. Text stays empty by contract.
func (p *Pipeline) failed(fileName, mime, fileType string, size int64, method models.ProcessingMethod, err error) *models.ProcessedDocument {
	return &models.ProcessedDocument{
		Success: false,
		Text:    "",
		Metadata: models.DocumentMetadata{
			FileName:         fileName,
			FileType:         fileType,
			MimeType:         mime,
			FileSize:         size,
			ProcessingMethod: method,
		},
		Error: err.Error(),
	}
}

func (p *Pipeline) notify(ctx context.Context, event observer.IngestEvent) {
	if p.events != nil {
		p.events.NotifyObservers(ctx, event)
	}
}

func methodForState(state models.TierState) models.ProcessingMethod {
	if state == models.TierAcceptedVision {
		return models.MethodVision
	}
	return models.MethodOCR
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if len(line) > 200 {
				cut := 200
				// Back off to a rune boundary so Polish diacritics
				// never get split into invalid UTF-8.
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				line = line[:cut]
			}
			return line
		}
	}
	return ""
}

func withDefaults(opts models.Options) models.Options {
	defaults := models.DefaultOptions()
	if opts.LocalConfidenceThreshold <= 0 {
		opts.LocalConfidenceThreshold = defaults.LocalConfidenceThreshold
	}
	if opts.LocalEngineDPI <= 0 {
		opts.LocalEngineDPI = defaults.LocalEngineDPI
	}
	if len(opts.Languages) == 0 {
		opts.Languages = defaults.Languages
	}
	if opts.VisionMaxDimension <= 0 {
		opts.VisionMaxDimension = defaults.VisionMaxDimension
	}
	if opts.MaxPDFPages <= 0 {
		opts.MaxPDFPages = defaults.MaxPDFPages
	}
	if opts.RasterDPI <= 0 {
		opts.RasterDPI = defaults.RasterDPI
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaults.MaxFileSize
	}
	return opts
}
