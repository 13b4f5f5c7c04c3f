package restore

import (
	"testing"

	"go-doc-ingest/pkg/models"
)

func statsWithFlags(brightness, contrast, sharpness, noise float64) models.ImageQualityStats {
	return models.ImageQualityStats{
		Brightness: brightness,
		Contrast:   contrast,
		Sharpness:  sharpness,
		NoiseLevel: noise,
	}.WithFlags()
}

func TestPlanDarkSharpImage(t *testing.T) {
	// Dark but sharp, decent contrast, almost no noise: expect a gamma
	// lift, no contrast boost, only the light sharpen pass, denoise off.
	recipe := PlanRestoration(statsWithFlags(30, 0.5, 0.8, 0.1))

	if recipe.Gamma >= 1.0 {
		t.Errorf("expected gamma < 1.0 for dark image, got %v", recipe.Gamma)
	}
	if recipe.ContrastMultiplier != 1.0 {
		t.Errorf("expected neutral contrast multiplier, got %v", recipe.ContrastMultiplier)
	}
	if recipe.Sharpen.Sigma != lightSharpenSigma {
		t.Errorf("expected light sharpen sigma %v, got %v", lightSharpenSigma, recipe.Sharpen.Sigma)
	}
	if recipe.DenoiseKernel != 0 {
		t.Errorf("expected denoise off, got kernel %d", recipe.DenoiseKernel)
	}
	if recipe.BrightnessOffset <= 0 {
		t.Errorf("expected positive brightness offset for dark image, got %v", recipe.BrightnessOffset)
	}
}

func TestPlanBrightImage(t *testing.T) {
	recipe := PlanRestoration(statsWithFlags(230, 0.4, 0.5, 0.1))
	if recipe.Gamma <= 1.0 {
		t.Errorf("expected gamma > 1.0 for bright image, got %v", recipe.Gamma)
	}
	if recipe.BrightnessOffset >= 0 {
		t.Errorf("expected negative brightness offset for bright image, got %v", recipe.BrightnessOffset)
	}
}

func TestPlanLowContrastBoost(t *testing.T) {
	recipe := PlanRestoration(statsWithFlags(128, 0.05, 0.5, 0.1))
	if recipe.ContrastMultiplier < contrastBoostMin {
		t.Errorf("expected contrast boost of at least %v, got %v", contrastBoostMin, recipe.ContrastMultiplier)
	}
	if recipe.ContrastMultiplier > contrastBoostMax {
		t.Errorf("contrast multiplier exceeds cap: %v", recipe.ContrastMultiplier)
	}
}

func TestPlanBlurrierImagesSharpenHarder(t *testing.T) {
	slight := PlanRestoration(statsWithFlags(128, 0.5, 0.25, 0.1))
	severe := PlanRestoration(statsWithFlags(128, 0.5, 0.05, 0.1))

	if slight.Sharpen.Sigma < strongSharpenSigmaMin {
		t.Errorf("expected strong sharpen for blurry image, got sigma %v", slight.Sharpen.Sigma)
	}
	if severe.Sharpen.Sigma <= slight.Sharpen.Sigma {
		t.Errorf("blurrier input should sharpen harder: %v vs %v", severe.Sharpen.Sigma, slight.Sharpen.Sigma)
	}
}

func TestPlanDenoiseKernelMonotonicInNoise(t *testing.T) {
	prev := 0
	for _, noise := range []float64{0.1, 0.3, 0.45, 0.55, 0.65, 0.8, 0.95} {
		recipe := PlanRestoration(statsWithFlags(128, 0.5, 0.5, noise))
		if recipe.DenoiseKernel < prev {
			t.Errorf("denoise kernel decreased from %d to %d at noise %v", prev, recipe.DenoiseKernel, noise)
		}
		prev = recipe.DenoiseKernel
	}
}

func TestPlanNoiseDampensSharpen(t *testing.T) {
	clean := PlanRestoration(statsWithFlags(128, 0.5, 0.5, 0.1))
	noisy := PlanRestoration(statsWithFlags(128, 0.5, 0.5, 0.5))
	if noisy.Sharpen.Sigma >= clean.Sharpen.Sigma {
		t.Errorf("noisy input should have damped sharpen: %v vs %v", noisy.Sharpen.Sigma, clean.Sharpen.Sigma)
	}
}

func TestPlanBinarizeOnVeryLowContrast(t *testing.T) {
	recipe := PlanRestoration(statsWithFlags(200, 0.05, 0.5, 0.1))
	if recipe.BinarizeThreshold == 0 {
		t.Fatal("expected binarize threshold for very low contrast")
	}
	if recipe.BinarizeThreshold != 180 {
		t.Errorf("expected threshold 180 (brightness*0.9), got %d", recipe.BinarizeThreshold)
	}

	normal := PlanRestoration(statsWithFlags(128, 0.5, 0.5, 0.1))
	if normal.BinarizeThreshold != 0 {
		t.Errorf("binarize must stay off at normal contrast, got %d", normal.BinarizeThreshold)
	}
}

func TestPlanGammaStaysInBounds(t *testing.T) {
	for _, brightness := range []float64{0, 10, 80, 128, 200, 255} {
		recipe := PlanRestoration(statsWithFlags(brightness, 0.5, 0.5, 0.1))
		if recipe.Gamma < gammaMin || recipe.Gamma > gammaMax {
			t.Errorf("gamma %v out of [%v,%v] at brightness %v", recipe.Gamma, gammaMin, gammaMax, brightness)
		}
	}
}

func TestPlanNeutralStats(t *testing.T) {
	recipe := PlanRestoration(models.NeutralQualityStats().WithFlags())
	if recipe.Gamma != 1.0 || recipe.ContrastMultiplier != 1.0 {
		t.Errorf("neutral stats must yield a neutral recipe, got gamma=%v contrast=%v",
			recipe.Gamma, recipe.ContrastMultiplier)
	}
	if recipe.DenoiseKernel != 0 || recipe.BinarizeThreshold != 0 {
		t.Errorf("neutral stats must not enable denoise or binarize: %+v", recipe)
	}
	if recipe.TargetWidth != models.TargetWidth || recipe.TargetHeight != models.TargetHeight {
		t.Errorf("unexpected target size %dx%d", recipe.TargetWidth, recipe.TargetHeight)
	}
}
