package analyzer

import (
	"image"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

const (
	// sharpnessNormalizer converts mean squared Laplacian energy to [0,1].
	// Empirical: document scans above this energy are fully sharp.
	sharpnessNormalizer = 5000.0

	// noiseNormalizer maps the median neighbor deviation to [0,1].
	noiseNormalizer = 30.0

	// contrastNormalizer maps pixel stddev to [0,1].
	contrastNormalizer = 128.0

	// noiseWindow is the side length of the sampling sub-window.
	noiseWindow = 100

	// noiseStride samples every 3rd pixel to keep the pass cheap.
	noiseStride = 3
)

// metricsCalculator implements MetricsCalculator on grayscale buffers
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Brightness computes the mean pixel value with parallel strip processing
func (mc *metricsCalculator) Brightness(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	// Small images are cheaper sequentially
	if width*height < 100000 {
		return mc.brightnessSequential(gray)
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	results := make(chan float64, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 || endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		go func(startY, endY int) {
			defer wg.Done()
			var total float64
			for y := startY; y < endY && y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					total += float64(gray.GrayAt(x, y).Y)
				}
			}
			results <- total
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total float64
	for partial := range results {
		total += partial
	}
	return total / float64(width*height)
}

func (mc *metricsCalculator) brightnessSequential(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			total += float64(gray.GrayAt(x, y).Y)
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}

// Contrast computes min(stddev/128, 1) over all pixels
func (mc *metricsCalculator) Contrast(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	n := float64(bounds.Dx() * bounds.Dy())
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}

	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Min(math.Sqrt(variance)/contrastNormalizer, 1)
}

// Sharpness computes the mean squared discrete Laplacian over interior
// pixels, normalized and clamped to [0,1]. Edge pixels are excluded.
func (mc *metricsCalculator) Sharpness(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	var sumSq float64
	count := 0
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			up := float64(gray.GrayAt(x, y-1).Y)
			down := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)

			laplacian := math.Abs(-4*center + up + down + left + right)
			sumSq += laplacian * laplacian
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return math.Min(sumSq/float64(count)/sharpnessNormalizer, 1)
}

// NoiseLevel samples every 3rd pixel of a central 100x100 sub-window and
// takes the median absolute deviation of each sample from the mean of its
// 4-neighbors. The median, not the mean, so that genuine edges within the
// window do not register as noise.
func (mc *metricsCalculator) NoiseLevel(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	winW := noiseWindow
	if winW > width-2 {
		winW = width - 2
	}
	winH := noiseWindow
	if winH > height-2 {
		winH = height - 2
	}
	startX := bounds.Min.X + (width-winW)/2
	startY := bounds.Min.Y + (height-winH)/2
	if startX < bounds.Min.X+1 {
		startX = bounds.Min.X + 1
	}
	if startY < bounds.Min.Y+1 {
		startY = bounds.Min.Y + 1
	}

	diffs := mc.slicePool.Get().([]float64)
	defer mc.slicePool.Put(diffs[:0])
	diffs = diffs[:0]

	for y := startY; y < startY+winH && y < bounds.Max.Y-1; y += noiseStride {
		for x := startX; x < startX+winW && x < bounds.Max.X-1; x += noiseStride {
			center := float64(gray.GrayAt(x, y).Y)
			neighbors := (float64(gray.GrayAt(x, y-1).Y) +
				float64(gray.GrayAt(x, y+1).Y) +
				float64(gray.GrayAt(x-1, y).Y) +
				float64(gray.GrayAt(x+1, y).Y)) / 4
			diffs = append(diffs, math.Abs(center-neighbors))
		}
	}

	if len(diffs) == 0 {
		return 0
	}

	sort.Float64s(diffs)
	median := stat.Quantile(0.5, stat.Empirical, diffs, nil)
	return math.Min(median/noiseNormalizer, 1)
}
