package restore

import (
	"image"
	"image/color"
	"testing"

	"go-doc-ingest/pkg/models"
)

func neutralRecipe() models.RestorationRecipe {
	return models.RestorationRecipe{
		Gamma:              1.0,
		ContrastMultiplier: 1.0,
	}
}

func grayImage(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	return img
}

func meanPixel(img *image.NRGBA) float64 {
	var sum float64
	count := 0
	for i := 0; i < len(img.Pix); i += 4 {
		sum += float64(img.Pix[i])
		count++
	}
	return sum / float64(count)
}

func TestExecuteDoesNotMutateInput(t *testing.T) {
	img := grayImage(20, 20, 100)
	recipe := neutralRecipe()
	recipe.Gamma = 0.8
	recipe.BrightnessOffset = 40

	Execute(img, recipe)

	if img.GrayAt(10, 10).Y != 100 {
		t.Error("input image was mutated")
	}
}

func TestExecuteBrightnessOffsetLifts(t *testing.T) {
	// A gradient keeps the histogram stretch from dominating the result.
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(60 + x)})
		}
	}

	base := neutralRecipe()
	lifted := neutralRecipe()
	lifted.BrightnessOffset = 60

	baseMean := meanPixel(Execute(img, base))
	liftedMean := meanPixel(Execute(img, lifted))

	if liftedMean <= baseMean {
		t.Errorf("positive brightness offset should lift the mean: %v vs %v", liftedMean, baseMean)
	}
}

func TestExecuteBinarizeProducesTwoLevels(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 8)})
		}
	}

	recipe := neutralRecipe()
	recipe.BinarizeThreshold = 128
	out := Execute(img, recipe)

	for i := 0; i < len(out.Pix); i += 4 {
		if v := out.Pix[i]; v != 0 && v != 255 {
			t.Fatalf("binarized output contains mid value %d", v)
		}
	}
}

func TestExecuteFitDownscalesOnly(t *testing.T) {
	recipe := neutralRecipe()
	recipe.TargetWidth = 100
	recipe.TargetHeight = 100

	big := Execute(grayImage(300, 200, 128), recipe)
	if b := big.Bounds(); b.Dx() > 100 || b.Dy() > 100 {
		t.Errorf("oversized image not fitted: %dx%d", b.Dx(), b.Dy())
	}

	small := Execute(grayImage(40, 30, 128), recipe)
	if b := small.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("small image must not be upscaled: %dx%d", b.Dx(), b.Dy())
	}
}

func TestMedianFilterRemovesSpeck(t *testing.T) {
	img := grayImage(21, 21, 200)
	img.SetGray(10, 10, color.Gray{Y: 0})

	recipe := neutralRecipe()
	recipe.DenoiseKernel = 3
	out := Execute(img, recipe)

	center := out.Pix[(10*out.Stride)+(10*4)]
	corner := out.Pix[0]
	if center != corner {
		t.Errorf("median filter should remove the isolated speck: center=%d corner=%d", center, corner)
	}
}

func TestUnsharpMaskIncreasesEdgeContrast(t *testing.T) {
	// Vertical step edge.
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(80)
			if x >= 20 {
				v = 170
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	sharpened := neutralRecipe()
	sharpened.Sharpen = models.SharpenParams{Sigma: 1.5, Flat: 1.0, Jagged: 3.0}

	plain := Execute(img, neutralRecipe())
	sharp := Execute(img, sharpened)

	edgeDelta := func(out *image.NRGBA) int {
		row := 20 * out.Stride
		left := int(out.Pix[row+19*4])
		right := int(out.Pix[row+20*4])
		return right - left
	}

	if edgeDelta(sharp) <= edgeDelta(plain) {
		t.Errorf("sharpening should widen the step: %d vs %d", edgeDelta(sharp), edgeDelta(plain))
	}
}
