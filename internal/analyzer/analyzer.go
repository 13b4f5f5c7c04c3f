package analyzer

import (
	"bytes"
	"image"
	"image/draw"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"go-doc-ingest/internal/logger"
	"go-doc-ingest/pkg/models"
)

// coreAnalyzer implements ImageAnalyzer and orchestrates the metric passes
type coreAnalyzer struct {
	metrics  MetricsCalculator
	grayPool sync.Pool
}

// NewImageAnalyzer creates a new image quality analyzer
func NewImageAnalyzer() ImageAnalyzer {
	return &coreAnalyzer{
		metrics: NewMetricsCalculator(),
		grayPool: sync.Pool{
			New: func() interface{} {
				return &image.Gray{}
			},
		},
	}
}

// Analyze computes quality statistics for a decoded image
func (ca *coreAnalyzer) Analyze(img image.Image) models.ImageQualityStats {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return models.NeutralQualityStats()
	}

	gray := ca.grayPool.Get().(*image.Gray)
	defer ca.grayPool.Put(gray)
	*gray = *image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	stats := models.ImageQualityStats{
		Brightness: ca.metrics.Brightness(gray),
		Contrast:   ca.metrics.Contrast(gray),
		Sharpness:  ca.metrics.Sharpness(gray),
		NoiseLevel: ca.metrics.NoiseLevel(gray),
	}
	return stats.WithFlags()
}

// AnalyzeBytes decodes an encoded image and analyzes it. On decode failure
// the neutral defaults are returned so the request can proceed.
func (ca *coreAnalyzer) AnalyzeBytes(data []byte) models.ImageQualityStats {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.WithError(err).Debug("image decode failed, using neutral quality stats")
		return models.NeutralQualityStats()
	}
	return ca.Analyze(img)
}
