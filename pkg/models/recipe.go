package models

// Target restoration bounds: A4 at 300 DPI.
const (
	TargetWidth  = 2480
	TargetHeight = 3508
)

// SharpenParams drives the unsharp-mask stage. Flat weighs low-frequency
// differences, Jagged weighs edges; both are skipped when Sigma is zero.
type SharpenParams struct {
	Sigma  float64 `json:"sigma"`
	Flat   float64 `json:"flat"`
	Jagged float64 `json:"jagged"`
}

// RestorationRecipe is the concrete set of restoration parameters derived
// from ImageQualityStats for one image. It is a pure function of the stats
// and has no independent lifecycle.
type RestorationRecipe struct {
	Gamma              float64       `json:"gamma"`               // [0.7, 1.5], 1.0 = neutral
	ContrastMultiplier float64       `json:"contrast_multiplier"` // [1.0, 1.5]
	BrightnessOffset   float64       `json:"brightness_offset"`   // additive, [-128, 128]
	Sharpen            SharpenParams `json:"sharpen"`
	DenoiseKernel      int           `json:"denoise_kernel"` // 0 = off, else 3 or 5
	TargetWidth        int           `json:"target_width"`
	TargetHeight       int           `json:"target_height"`
	BinarizeThreshold  int           `json:"binarize_threshold"` // 0 = off
}
