package restore

import (
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"

	"go-doc-ingest/pkg/models"
)

// Histogram stretch anchors. The darkest and brightest 1% of pixels are
// treated as outliers (scanner margins, specks).
const (
	histLowPercentile  = 0.01
	histHighPercentile = 0.99
)

// Execute applies a restoration recipe to an image in fixed order:
// grayscale, gamma, histogram normalization, denoise, linear
// contrast/brightness, sharpen, resize, binarize. The input image is never
// mutated; a new buffer is returned.
func Execute(img image.Image, recipe models.RestorationRecipe) *image.NRGBA {
	out := imaging.Grayscale(img)

	if recipe.Gamma != 1.0 {
		out = imaging.AdjustGamma(out, recipe.Gamma)
	}

	out = normalizeHistogram(out)

	if recipe.DenoiseKernel > 0 {
		out = medianFilter(out, recipe.DenoiseKernel)
	}

	if recipe.ContrastMultiplier != 1.0 {
		out = imaging.AdjustContrast(out, (recipe.ContrastMultiplier-1.0)*100)
	}
	if recipe.BrightnessOffset != 0 {
		out = imaging.AdjustBrightness(out, recipe.BrightnessOffset/255.0*100)
	}

	if recipe.Sharpen.Sigma > 0 {
		out = unsharpMask(out, recipe.Sharpen)
	}

	if recipe.TargetWidth > 0 && recipe.TargetHeight > 0 {
		bounds := out.Bounds()
		// Fit never upscales past the original dimensions
		if bounds.Dx() > recipe.TargetWidth || bounds.Dy() > recipe.TargetHeight {
			out = imaging.Fit(out, recipe.TargetWidth, recipe.TargetHeight, imaging.Lanczos)
		}
	}

	if recipe.BinarizeThreshold > 0 {
		threshold := uint8(recipe.BinarizeThreshold)
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			v := uint8(0)
			if c.R >= threshold {
				v = 255
			}
			return color.NRGBA{R: v, G: v, B: v, A: c.A}
		})
	}

	return out
}

// normalizeHistogram linearly stretches the luminance range so the 1st and
// 99th percentiles land on 0 and 255.
func normalizeHistogram(img *image.NRGBA) *image.NRGBA {
	hist := imaging.Histogram(img)

	var cum float64
	lo, hi := 0, 255
	for i, v := range hist {
		cum += v
		if cum <= histLowPercentile {
			lo = i
		}
		if cum < histHighPercentile {
			hi = i
		}
	}
	if hi <= lo {
		return img
	}

	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: stretch(c.R, lo, scale),
			G: stretch(c.G, lo, scale),
			B: stretch(c.B, lo, scale),
			A: c.A,
		}
	})
}

func stretch(v uint8, lo int, scale float64) uint8 {
	stretched := (float64(v) - float64(lo)) * scale
	return clampByte(stretched)
}

// medianFilter applies a kernel-sized median over each channel. The buffer
// is grayscale at this stage so one channel ranking serves all three.
func medianFilter(img *image.NRGBA, kernel int) *image.NRGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := imaging.Clone(img)
	radius := kernel / 2
	window := make([]int, 0, kernel*kernel)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			window = window[:0]
			for ky := -radius; ky <= radius; ky++ {
				for kx := -radius; kx <= radius; kx++ {
					px, py := x+kx, y+ky
					if px < 0 || px >= width || py < 0 || py >= height {
						continue
					}
					window = append(window, int(img.Pix[py*img.Stride+px*4]))
				}
			}
			sort.Ints(window)
			median := uint8(window[len(window)/2])
			offset := y*out.Stride + x*4
			out.Pix[offset] = median
			out.Pix[offset+1] = median
			out.Pix[offset+2] = median
		}
	}
	return out
}

// unsharpMask sharpens by adding back the difference between the image and
// a Gaussian-blurred copy. Small differences (flat regions) are weighted by
// Flat, large differences (edges) by Jagged.
func unsharpMask(img *image.NRGBA, params models.SharpenParams) *image.NRGBA {
	const flatCutoff = 10 // below this delta a pixel counts as flat

	blurred := imaging.Blur(img, params.Sigma)
	out := imaging.Clone(img)

	for i := 0; i < len(out.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			orig := float64(img.Pix[i+ch])
			blur := float64(blurred.Pix[i+ch])
			delta := orig - blur

			weight := params.Jagged
			if delta < flatCutoff && delta > -flatCutoff {
				weight = params.Flat
			}
			out.Pix[i+ch] = clampByte(orig + weight*delta)
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
