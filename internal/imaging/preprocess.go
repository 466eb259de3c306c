package imaging

import (
	"image"

	"github.com/Brownie44l1/gummy-api/internal/model"
	"github.com/nfnt/resize"
)

// InputSize is the square edge the classifier was trained on.
const InputSize = 224

// Preprocess resizes img to InputSize x InputSize, scales every channel to
// [0,1] and adds a batch axis of one. Images that already have the target
// size are not resampled.
func Preprocess(img *image.RGBA, layout model.Layout) model.Tensor {
	resized := img
	if img.Bounds().Dx() != InputSize || img.Bounds().Dy() != InputSize {
		out := resize.Resize(InputSize, InputSize, img, resize.Bilinear)
		rgba, ok := out.(*image.RGBA)
		if !ok {
			rgba = ToRGB(out)
		}
		resized = rgba
	}

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	data := make([]float32, 3*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := resized.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			r := float32(resized.Pix[off]) / 255.0
			g := float32(resized.Pix[off+1]) / 255.0
			b := float32(resized.Pix[off+2]) / 255.0

			pixelIndex := y*width + x
			if layout == model.LayoutNCHW {
				data[pixelIndex] = r
				data[plane+pixelIndex] = g
				data[2*plane+pixelIndex] = b
				continue
			}
			data[3*pixelIndex] = r
			data[3*pixelIndex+1] = g
			data[3*pixelIndex+2] = b
		}
	}

	return model.Tensor{Shape: layout.Shape(height, width), Data: data}
}
