package restore

import (
	"math"

	"go-doc-ingest/pkg/models"
)

// Planner tuning constants. These compose the deterministic decision table
// that maps quality stats to a restoration recipe.
const (
	gammaMin = 0.7
	gammaMax = 1.5

	contrastBoostMin = 1.2
	contrastBoostMax = 1.5

	strongSharpenSigmaMin = 1.5
	strongSharpenSigmaMax = 2.1
	strongSharpenFlat     = 1.5
	strongSharpenJagged   = 3.0

	lightSharpenSigma = 0.5

	defaultSharpenSigma  = 1.0
	defaultSharpenFlat   = 1.0
	defaultSharpenJagged = 2.0

	// Sharpen is damped after denoising so it does not re-amplify the
	// noise the median pass just removed.
	postDenoiseSharpenFactor = 0.7

	midGray = 128.0
)

// PlanRestoration converts quality statistics into a concrete restoration
// recipe. It is a pure function: each rule is independent and rules compose
// additively, so multiple conditions may fire together.
func PlanRestoration(stats models.ImageQualityStats) models.RestorationRecipe {
	recipe := models.RestorationRecipe{
		Gamma:              1.0,
		ContrastMultiplier: 1.0,
		Sharpen: models.SharpenParams{
			Sigma:  defaultSharpenSigma,
			Flat:   defaultSharpenFlat,
			Jagged: defaultSharpenJagged,
		},
		TargetWidth:  models.TargetWidth,
		TargetHeight: models.TargetHeight,
	}

	if stats.IsDark {
		recipe.Gamma = gammaMin + (1.0-gammaMin)*(stats.Brightness/255.0)
		recipe.BrightnessOffset = (midGray - stats.Brightness) * 0.5
	}

	if stats.IsBright {
		overshoot := (stats.Brightness - models.BrightThreshold) / (255.0 - models.BrightThreshold)
		recipe.Gamma = 1.0 + (gammaMax-1.0)*overshoot
		recipe.BrightnessOffset = -(stats.Brightness - models.BrightThreshold) * 0.6
	}

	if stats.IsLowContrast {
		deficit := (models.LowContrastThreshold - stats.Contrast) / models.LowContrastThreshold
		recipe.ContrastMultiplier = contrastBoostMin + (contrastBoostMax-contrastBoostMin)*deficit
	}

	if stats.IsBlurry {
		// Blurrier inputs get a larger sigma
		severity := (models.BlurryThreshold - stats.Sharpness) / models.BlurryThreshold
		recipe.Sharpen = models.SharpenParams{
			Sigma:  strongSharpenSigmaMin + (strongSharpenSigmaMax-strongSharpenSigmaMin)*severity,
			Flat:   strongSharpenFlat,
			Jagged: strongSharpenJagged,
		}
	} else if stats.Sharpness > models.AlreadySharpThreshold {
		recipe.Sharpen = models.SharpenParams{
			Sigma:  lightSharpenSigma,
			Flat:   defaultSharpenFlat,
			Jagged: defaultSharpenJagged,
		}
	}

	if stats.IsNoisy {
		if stats.NoiseLevel > models.HeavyNoiseThreshold {
			recipe.DenoiseKernel = 5
		} else {
			recipe.DenoiseKernel = 3
		}
		// Denoise runs before sharpen in the executor; damp the sharpen so
		// residual noise is not amplified back.
		recipe.Sharpen.Sigma *= postDenoiseSharpenFactor
	}

	if stats.Contrast < models.VeryLowContrast {
		recipe.BinarizeThreshold = int(math.Round(stats.Brightness * 0.9))
	}

	recipe.Gamma = clamp(recipe.Gamma, gammaMin, gammaMax)
	recipe.BrightnessOffset = clamp(recipe.BrightnessOffset, -128, 128)
	return recipe
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
