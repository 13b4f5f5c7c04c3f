package analyzer

import (
	"image"

	"go-doc-ingest/pkg/models"
)

// ImageAnalyzer computes quality statistics for one image buffer
type ImageAnalyzer interface {
	Analyze(img image.Image) models.ImageQualityStats

	// AnalyzeBytes decodes and analyzes an encoded image. Decode failures
	// degrade to neutral defaults instead of failing the request.
	AnalyzeBytes(data []byte) models.ImageQualityStats
}

// MetricsCalculator handles the raw metric computation on grayscale buffers
type MetricsCalculator interface {
	Brightness(gray *image.Gray) float64
	Contrast(gray *image.Gray) float64
	Sharpness(gray *image.Gray) float64
	NoiseLevel(gray *image.Gray) float64
}
