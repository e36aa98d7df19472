package gpu

import (
	"image"
	"image/color"

	"github.com/Faultbox/skyscene/pkg/math"
)

// Image is a float readback of a render target. Row 0 is the bottom row, as
// in OpenGL.
type Image struct {
	Width  int
	Height int
	Pix    []math.Vec4
}

// NewImage allocates a zeroed image.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]math.Vec4, w*h)}
}

// At returns the texel at (x, y) from the bottom-left corner.
func (im *Image) At(x, y int) math.Vec4 {
	return im.Pix[y*im.Width+x]
}

// Set stores the texel at (x, y).
func (im *Image) Set(x, y int, v math.Vec4) {
	im.Pix[y*im.Width+x] = v
}

// ToNRGBA converts to an 8-bit image in top-down row order, clamping to [0,1].
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			v := im.At(x, im.Height-1-y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: to8(v.X),
				G: to8(v.Y),
				B: to8(v.Z),
				A: 255,
			})
		}
	}
	return out
}

func to8(v float32) uint8 {
	return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
}
