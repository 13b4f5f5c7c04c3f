package models

// Quality flag thresholds. Tuned empirically on scanned Polish municipal
// documents; recalibrate before pointing the pipeline at a different corpus.
const (
	LowContrastThreshold  = 0.15
	DarkThreshold         = 80.0
	BrightThreshold       = 200.0
	BlurryThreshold       = 0.3
	NoisyThreshold        = 0.4
	BlankBrightness       = 250.0
	BlankContrast         = 0.05
	VeryLowContrast       = 0.10
	HeavyNoiseThreshold   = 0.6
	AlreadySharpThreshold = 0.7
)

// ImageQualityStats holds the normalized quality metrics for one image.
// Created once per image buffer and never mutated.
type ImageQualityStats struct {
	Brightness float64 `json:"brightness"`  // mean pixel value, [0,255]
	Contrast   float64 `json:"contrast"`    // min(stddev/128, 1), [0,1]
	Sharpness  float64 `json:"sharpness"`   // normalized Laplacian energy, [0,1]
	NoiseLevel float64 `json:"noise_level"` // median neighbor deviation, [0,1]

	IsLowContrast bool `json:"is_low_contrast"`
	IsDark        bool `json:"is_dark"`
	IsBright      bool `json:"is_bright"`
	IsBlurry      bool `json:"is_blurry"`
	IsNoisy       bool `json:"is_noisy"`
}

// WithFlags returns a copy of the stats with the boolean flags derived
// from the continuous values.
func (s ImageQualityStats) WithFlags() ImageQualityStats {
	s.IsLowContrast = s.Contrast < LowContrastThreshold
	s.IsDark = s.Brightness < DarkThreshold
	s.IsBright = s.Brightness > BrightThreshold
	s.IsBlurry = s.Sharpness < BlurryThreshold
	s.IsNoisy = s.NoiseLevel > NoisyThreshold
	return s
}

// IsBlank reports whether the image is effectively an empty page.
// Blank pages skip both OCR tiers.
func (s ImageQualityStats) IsBlank() bool {
	return s.Brightness > BlankBrightness && s.Contrast < BlankContrast
}

// NeutralQualityStats is the fallback when image decoding fails: the
// restoration planner sees a plausible mid-range image and applies no
// aggressive correction.
func NeutralQualityStats() ImageQualityStats {
	return ImageQualityStats{
		Brightness: 128,
		Contrast:   0.5,
		Sharpness:  0.5,
		NoiseLevel: 0.2,
	}
}
