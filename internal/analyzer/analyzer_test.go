package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"go-doc-ingest/pkg/models"
)

// createUniformImage builds a W x H grayscale image with a single value.
func createUniformImage(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	return img
}

// createCheckerboard builds an alternating black/white pixel grid.
func createCheckerboard(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func TestBrightnessUniform(t *testing.T) {
	calc := NewMetricsCalculator()
	brightness := calc.Brightness(createUniformImage(50, 50, 100))
	if math.Abs(brightness-100) > 0.001 {
		t.Errorf("expected brightness 100, got %v", brightness)
	}
}

func TestBrightnessParallelMatchesSequential(t *testing.T) {
	// 400x400 crosses the parallel-strip threshold.
	img := image.NewGray(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	calc := NewMetricsCalculator().(*metricsCalculator)
	parallel := calc.Brightness(img)
	sequential := calc.brightnessSequential(img)
	if math.Abs(parallel-sequential) > 0.001 {
		t.Errorf("parallel brightness %v differs from sequential %v", parallel, sequential)
	}
}

func TestContrastUniformIsZero(t *testing.T) {
	calc := NewMetricsCalculator()
	contrast := calc.Contrast(createUniformImage(50, 50, 128))
	if contrast > 0.001 {
		t.Errorf("expected near-zero contrast for uniform image, got %v", contrast)
	}
}

func TestContrastCheckerboardIsHigh(t *testing.T) {
	calc := NewMetricsCalculator()
	contrast := calc.Contrast(createCheckerboard(50, 50))
	if contrast < 0.9 {
		t.Errorf("expected high contrast for checkerboard, got %v", contrast)
	}
}

func TestSharpnessUniformIsZero(t *testing.T) {
	calc := NewMetricsCalculator()
	sharpness := calc.Sharpness(createUniformImage(50, 50, 128))
	if sharpness > 0.001 {
		t.Errorf("expected zero sharpness for uniform image, got %v", sharpness)
	}
}

func TestSharpnessCheckerboardClampsToOne(t *testing.T) {
	calc := NewMetricsCalculator()
	sharpness := calc.Sharpness(createCheckerboard(50, 50))
	if sharpness < 0.99 {
		t.Errorf("expected saturated sharpness for checkerboard, got %v", sharpness)
	}
}

func TestNoiseLevelUniformIsZero(t *testing.T) {
	calc := NewMetricsCalculator()
	noise := calc.NoiseLevel(createUniformImage(120, 120, 128))
	if noise > 0.001 {
		t.Errorf("expected zero noise for uniform image, got %v", noise)
	}
}

func TestNoiseLevelCheckerboardSaturates(t *testing.T) {
	calc := NewMetricsCalculator()
	noise := calc.NoiseLevel(createCheckerboard(120, 120))
	if noise < 0.99 {
		t.Errorf("expected saturated noise for checkerboard, got %v", noise)
	}
}

func TestTinyImagesReturnZero(t *testing.T) {
	calc := NewMetricsCalculator()
	tiny := createUniformImage(2, 2, 128)
	if got := calc.Sharpness(tiny); got != 0 {
		t.Errorf("expected zero sharpness for 2x2 image, got %v", got)
	}
	if got := calc.NoiseLevel(tiny); got != 0 {
		t.Errorf("expected zero noise for 2x2 image, got %v", got)
	}
}

func TestAnalyzeDarkImageFlags(t *testing.T) {
	a := NewImageAnalyzer()
	stats := a.Analyze(createUniformImage(50, 50, 30))
	if !stats.IsDark {
		t.Error("expected dark flag for brightness 30")
	}
	if stats.IsBright {
		t.Error("bright flag must not be set for brightness 30")
	}
	if !stats.IsLowContrast {
		t.Error("expected low-contrast flag for uniform image")
	}
}

func TestAnalyzeBrightImageFlags(t *testing.T) {
	a := NewImageAnalyzer()
	stats := a.Analyze(createUniformImage(50, 50, 220))
	if !stats.IsBright {
		t.Error("expected bright flag for brightness 220")
	}
	if stats.IsDark {
		t.Error("dark flag must not be set for brightness 220")
	}
}

func TestAnalyzeBlankPage(t *testing.T) {
	a := NewImageAnalyzer()
	stats := a.Analyze(createUniformImage(50, 50, 253))
	if !stats.IsBlank() {
		t.Errorf("expected blank page detection, got %+v", stats)
	}
}

func TestAnalyzeBytesRoundTrip(t *testing.T) {
	a := NewImageAnalyzer()
	img := createUniformImage(50, 50, 90)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	stats := a.AnalyzeBytes(buf.Bytes())
	if math.Abs(stats.Brightness-90) > 0.5 {
		t.Errorf("expected brightness 90 from encoded image, got %v", stats.Brightness)
	}
}

func TestAnalyzeBytesDecodeFailure(t *testing.T) {
	a := NewImageAnalyzer()
	stats := a.AnalyzeBytes([]byte("definitely not an image"))
	if stats != models.NeutralQualityStats() {
		t.Errorf("expected neutral stats on decode failure, got %+v", stats)
	}
}
