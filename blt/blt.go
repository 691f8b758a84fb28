/*
Package blt implements a BMP decoder that produces pixel buffers ready to be
blitted to a display surface, and a matching encoder.

Only uncompressed images using the 54 byte header form are supported; that is
a 14 byte file header followed by the 40 byte BITMAPINFOHEADER. Images with 1,
4 or 8 bits per pixel carry a color table of 2, 16 or 256 four byte entries
stored as blue, green, red and a reserved byte. Pixel data is stored bottom-up
with every row padded to a multiple of four bytes.

The decoded buffer is a top-down array of three byte red, green, blue pixels so
pixel (x, y) starts at (y*width+x)*3.
*/
package blt

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen
	colorEntryLen = 4

	// PixelSize is the number of bytes used for each pixel in a Buffer.
	PixelSize = 3
)

// colorTableLen returns the number of color table entries required for the
// given depth, zero for direct color.
func colorTableLen(bpp uint16) int {
	switch bpp {
	case 1, 4, 8:
		return 1 << bpp
	}
	return 0
}

// lineSize returns the number of bytes each stored row occupies including the
// padding to a 32-bit boundary.
func lineSize(width, bpp uint64) uint64 {
	return ((width*bpp + 31) >> 3) &^ 3
}
