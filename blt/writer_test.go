package blt

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaletted(r image.Rectangle, colors int) *image.Paletted {
	p := make(color.Palette, colors)
	for i := range p {
		p[i] = color.RGBA{byte(i * 7), byte(255 - i), byte(i * 13), 0xff}
	}
	m := image.NewPaletted(r, p)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetColorIndex(x, y, uint8((x*3+y*5)%colors))
		}
	}
	return m
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		bpp    int
		colors int
	}{
		{1, 2},
		{4, 16},
		{4, 5},
		{8, 256},
		{8, 3},
		{24, 256},
	}

	// Odd sizes and a non-zero origin exercise the padding and packing
	for _, r := range []image.Rectangle{image.Rect(0, 0, 1, 1), image.Rect(0, 0, 13, 7), image.Rect(3, 2, 12, 5)} {
		for _, tt := range tests {
			src := testPaletted(r, tt.colors)

			b := new(bytes.Buffer)
			require.NoError(t, Encode(b, src, tt.bpp))

			h, err := ReadHeader(b.Bytes())
			require.NoError(t, err)
			assert.Equal(t, uint16(tt.bpp), h.BitsPerPixel)
			assert.Equal(t, uint32(b.Len()), h.FileSize)

			m, err := Decode(b.Bytes(), nil)
			require.NoError(t, err)
			require.Equal(t, r.Dx(), m.Width)
			require.Equal(t, r.Dy(), m.Height)

			for y := 0; y < m.Height; y++ {
				for x := 0; x < m.Width; x++ {
					want := color.RGBAModel.Convert(src.At(r.Min.X+x, r.Min.Y+y))
					assert.Equal(t, want, m.At(x, y), "%d bpp %v pixel (%d, %d)", tt.bpp, r, x, y)
				}
			}
		}
	}
}

func TestEncodeQuantizes(t *testing.T) {
	r := image.Rect(0, 0, 9, 4)
	src := image.NewRGBA(r)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			if (x+y)%2 == 0 {
				src.SetRGBA(x, y, color.RGBA{0xff, 0x20, 0x20, 0xff})
			} else {
				src.SetRGBA(x, y, color.RGBA{0x10, 0x10, 0xe0, 0xff})
			}
		}
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, src, 1))

	m, err := Decode(b.Bytes(), nil)
	require.NoError(t, err)
	require.Equal(t, r, m.Bounds())

	// Pixels that shared a color still do
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			assert.Equal(t, m.At((x+y)%2, 0), m.At(x, y))
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	for _, bpp := range []int{1, 4, 8, 24} {
		b := new(bytes.Buffer)
		require.NoError(t, Encode(b, image.NewRGBA(image.Rectangle{}), bpp))

		m, err := Decode(b.Bytes(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Width)
		assert.Equal(t, 0, m.Height)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	for _, bpp := range []int{0, 2, 16, 32} {
		assert.Equal(t, ErrUnsupportedFormat, Encode(new(bytes.Buffer), image.NewRGBA(image.Rect(0, 0, 1, 1)), bpp))
	}
}
