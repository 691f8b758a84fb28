package blt

import (
	"image"
	"image/color"
)

// Buffer is a decoded image. Pix holds Width*Height pixels, top row first,
// each pixel being PixelSize bytes of red, green and blue.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
}

// PixOffset returns the index of the first byte of pixel (x, y) in Pix.
func (b *Buffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * PixelSize
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	return b.RGBAAt(x, y)
}

// RGBAAt returns the color of pixel (x, y). Pixels outside the buffer are
// transparent black.
func (b *Buffer) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	i := b.PixOffset(x, y)
	return color.RGBA{b.Pix[i+0], b.Pix[i+1], b.Pix[i+2], 0xff}
}

// Opaque reports whether the buffer is fully opaque, which it always is.
func (b *Buffer) Opaque() bool {
	return true
}
