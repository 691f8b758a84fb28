package blt

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
)

type encoder struct {
	w      io.Writer
	bpp    int
	stride int
}

// Pad palette to exactly n colors
func padPalette(p color.Palette, n int) color.Palette {
	dup := make(color.Palette, n)
	copy(dup, p)
	for i := len(p); i < n; i++ {
		dup[i] = color.RGBA{0, 0, 0, 0xff}
	}
	return dup
}

func toPaletted(m image.Image, colors int) *image.Paletted {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}

	if pm == nil || len(pm.Palette) > colors {
		var p color.Palette
		if !b.Empty() {
			q := quantize.MedianCutQuantizer{}
			p = q.Quantize(make(color.Palette, 0, colors), m)
		}
		// draw.Draw needs at least one color to map to
		pm = image.NewPaletted(b, padPalette(p, colors))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	return pm
}

func (e *encoder) writeColorTable(p color.Palette) error {
	var tmp [colorEntryLen]byte
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		tmp[0], tmp[1], tmp[2] = byte(b>>8), byte(g>>8), byte(r>>8)
		if _, err := e.w.Write(tmp[:]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodePaletted(m *image.Paletted) error {
	if err := e.writeColorTable(padPalette(m.Palette, 1<<e.bpp)); err != nil {
		return err
	}

	b := m.Bounds()
	perByte := 8 / e.bpp
	row := make([]byte, e.stride)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for i := range row {
			row[i] = 0
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			i := x - b.Min.X
			shift := uint(8 - e.bpp*(i%perByte+1))
			row[i/perByte] |= m.ColorIndexAt(x, y) & (1<<uint(e.bpp) - 1) << shift
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodeRGB(m image.Image) error {
	b := m.Bounds()
	row := make([]byte, e.stride)
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := m.At(x, y).RGBA()
			i := (x - b.Min.X) * 3
			row[i+0], row[i+1], row[i+2] = byte(bl>>8), byte(g>>8), byte(r>>8)
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the Image m to w as an uncompressed BMP with the given number
// of bits per pixel, one of 1, 4, 8 or 24. For the indexed depths the image is
// quantized if it has more colors than the depth allows.
func Encode(w io.Writer, m image.Image, bpp int) error {
	if bpp != 24 && colorTableLen(uint16(bpp)) == 0 {
		return ErrUnsupportedFormat
	}

	b := m.Bounds()
	if b.Dx() > math.MaxInt32 || b.Dy() > math.MaxInt32 {
		return ErrSizeOverflow
	}

	stride := lineSize(uint64(b.Dx()), uint64(bpp))
	offset := uint64(headerLen + colorTableLen(uint16(bpp))*colorEntryLen)
	size := offset + stride*uint64(b.Dy())
	if size > math.MaxUint32 {
		return ErrSizeOverflow
	}

	h := Header{
		Magic:        [2]byte{'B', 'M'},
		FileSize:     uint32(size),
		ImageOffset:  uint32(offset),
		HeaderSize:   infoHeaderLen,
		Width:        int32(b.Dx()),
		Height:       int32(b.Dy()),
		Planes:       1,
		BitsPerPixel: uint16(bpp),
		ImageSize:    uint32(size - offset),
	}
	if bpp != 24 {
		h.ColorsUsed = uint32(colorTableLen(uint16(bpp)))
	}

	var tmp [headerLen]byte
	h.marshal(tmp[:])
	if _, err := w.Write(tmp[:]); err != nil {
		return err
	}

	e := encoder{
		w:      w,
		bpp:    bpp,
		stride: int(stride),
	}

	if bpp == 24 {
		return e.encodeRGB(m)
	}
	return e.encodePaletted(toPaletted(m, 1<<bpp))
}
