package watermark

import (
	"fmt"
	"math"
)

// AnalysisResult holds metrics about the comparison between two images.
type AnalysisResult struct {
	MSE     float64 // Mean Squared Error
	PSNR    float64 // Peak Signal-to-Noise Ratio (dB)
	Changed int     // pixels with at least one modified color sample
	// Heatmap is an RGB image: black where nothing changed, green to red with the size of the change.
	Heatmap *Image
}

// Analyze compares an original image with a watermarked copy over their color planes.
func Analyze(original, marked *Image) (*AnalysisResult, error) {
	if err := original.validate(); err != nil {
		return nil, err
	}
	if err := marked.validate(); err != nil {
		return nil, err
	}
	if original.Width != marked.Width || original.Height != marked.Height || original.ColorPlanes() != marked.ColorPlanes() {
		return nil, fmt.Errorf("%w: %dx%d with %d color planes vs %dx%d with %d",
			ErrInvalidDimensions, original.Width, original.Height, original.ColorPlanes(),
			marked.Width, marked.Height, marked.ColorPlanes())
	}

	width, height := original.Width, original.Height
	heatmap := &Image{Width: width, Height: height, Planes: []Plane{
		NewPlane(width, height), NewPlane(width, height), NewPlane(width, height),
	}}

	var sumSquaredError float64
	changed := 0
	for i := 0; i < width*height; i++ {
		var diffSum float64
		for ch := range original.ColorPlanes() {
			diff := original.Planes[ch].Pix[i] - marked.Planes[ch].Pix[i]
			sumSquaredError += diff * diff
			diffSum += math.Abs(diff)
		}
		if diffSum == 0 {
			continue
		}
		changed++
		// A difference of 1 becomes 50 brightness.
		intensity := math.Min(255, math.Round(diffSum*50))
		heatmap.Planes[0].Pix[i] = intensity
		heatmap.Planes[1].Pix[i] = 255 - intensity
	}

	mse := sumSquaredError / float64(width*height*original.ColorPlanes())
	psnr := 10 * math.Log10((255*255)/mse)

	return &AnalysisResult{MSE: mse, PSNR: psnr, Changed: changed, Heatmap: heatmap}, nil
}
