package graphics

import (
	"image"
	"image/color"
)

const (
	FrameWidth  = 256
	FrameHeight = 240

	// VisibleHeight is the number of lines backends show. The last two tile
	// rows of a snapshot fall outside the NTSC safe area.
	VisibleHeight = 224
)

// Frame is a 256x240 image of 0xRRGGBB pixels.
type Frame [FrameWidth * FrameHeight]uint32

// At returns the pixel at (x, y)
func (f *Frame) At(x, y int) uint32 {
	return f[y*FrameWidth+x]
}

// Image copies the visible area into dst, allocating it when nil or the
// wrong size.
func (f *Frame) Image(dst *image.RGBA) *image.RGBA {
	bounds := image.Rect(0, 0, FrameWidth, VisibleHeight)
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewRGBA(bounds)
	}
	for y := 0; y < VisibleHeight; y++ {
		for x := 0; x < FrameWidth; x++ {
			pixel := f[y*FrameWidth+x]
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 0xFF,
			})
		}
	}
	return dst
}
