package blt

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"math/bits"
)

var (
	// ErrTruncatedHeader is returned when the input is shorter than the
	// fixed header.
	ErrTruncatedHeader = errors.New("blt: truncated header")
	// ErrNotBMP is returned when the input does not start with "BM".
	ErrNotBMP = errors.New("blt: not a BMP image")
	// ErrUnsupportedHeader is returned for any info header other than the
	// 40 byte BITMAPINFOHEADER.
	ErrUnsupportedHeader = errors.New("blt: unsupported header variant")
	// ErrUnsupportedCompression is returned for compressed images.
	ErrUnsupportedCompression = errors.New("blt: unsupported compression")
	// ErrUnsupportedFormat is returned for unsupported pixel depths and
	// top-down images.
	ErrUnsupportedFormat = errors.New("blt: unsupported pixel format")
	// ErrInconsistentSize is returned when the file size in the header
	// disagrees with the input or the image dimensions.
	ErrInconsistentSize = errors.New("blt: inconsistent file size")
	// ErrInvalidOffset is returned when the pixel data overlaps the header.
	ErrInvalidOffset = errors.New("blt: invalid image data offset")
	// ErrColorTableOverflow is returned when the color table does not fit
	// between the header and the pixel data.
	ErrColorTableOverflow = errors.New("blt: color table overflows image data")
	// ErrSizeOverflow is returned when a size computation would overflow.
	ErrSizeOverflow = errors.New("blt: size overflow")
	// ErrBufferTooSmall is matched by any *BufferTooSmallError.
	ErrBufferTooSmall = errors.New("blt: buffer too small")
	// ErrOutOfMemory is returned when the output buffer cannot be
	// allocated.
	ErrOutOfMemory = errors.New("blt: out of memory")
)

// BufferTooSmallError is returned when the destination passed to Decode
// cannot hold the decoded image. Required is the size in bytes needed.
type BufferTooSmallError struct {
	Required int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("%s, %d bytes required", ErrBufferTooSmall, e.Required)
}

// Is makes errors.Is(err, ErrBufferTooSmall) true.
func (e *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func defaultAlloc(size int) (b []byte) {
	defer func() {
		if recover() != nil {
			b = nil
		}
	}()
	return make([]byte, size)
}

// A Decoder decodes BMP images using a custom allocator. The zero value
// allocates with make.
type Decoder struct {
	// Alloc returns a zeroed buffer of size bytes, or nil if it can't.
	Alloc func(size int) []byte
	// Free, if set, is handed any buffer from Alloc that is discarded
	// because decoding failed after allocation.
	Free func([]byte)
}

var defaultDecoder Decoder

// Decode decodes the BMP image in b. If dst is nil a new buffer is
// allocated, otherwise the pixels are written to the start of dst which must
// be large enough to hold them; if it isn't a *BufferTooSmallError is
// returned and dst is left untouched.
func Decode(b, dst []byte) (*Buffer, error) {
	return defaultDecoder.Decode(b, dst)
}

type decoder struct {
	width   int
	palette []byte
}

func (d *decoder) color(dst []byte, i byte) {
	c := d.palette[int(i)*colorEntryLen:]
	dst[0], dst[1], dst[2] = c[2], c[1], c[0]
}

// expandPacked expands a row of 1 or 4 bit indices, most significant first.
// Anything left in the last byte after width pixels is ignored.
func (d *decoder) expandPacked(dst, src []byte, bpp uint) {
	mask := byte(1)<<bpp - 1
	remaining := d.width
	for _, b := range src {
		for shift := 8 - int(bpp); shift >= 0 && remaining > 0; shift -= int(bpp) {
			d.color(dst, b>>uint(shift)&mask)
			dst = dst[PixelSize:]
			remaining--
		}
		if remaining == 0 {
			break
		}
	}
}

func (d *decoder) expand1(dst, src []byte) {
	d.expandPacked(dst, src, 1)
}

func (d *decoder) expand4(dst, src []byte) {
	d.expandPacked(dst, src, 4)
}

func (d *decoder) expand8(dst, src []byte) {
	for x := 0; x < d.width; x++ {
		d.color(dst[x*PixelSize:], src[x])
	}
}

func (d *decoder) expand24(dst, src []byte) {
	for x := 0; x < d.width; x++ {
		s, p := src[x*3:x*3+3], dst[x*PixelSize:]
		p[0], p[1], p[2] = s[2], s[1], s[0]
	}
}

// Decode decodes the BMP image in b into dst, see the package level Decode.
func (d *Decoder) Decode(b, dst []byte) (*Buffer, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}

	stride := lineSize(uint64(h.Width), uint64(h.BitsPerPixel))
	hi, imageSize := bits.Mul64(stride, uint64(h.Height))
	if hi != 0 || imageSize > math.MaxUint32 {
		return nil, ErrSizeOverflow
	}

	if uint64(h.FileSize) != uint64(len(b)) ||
		h.FileSize < h.ImageOffset ||
		uint64(h.FileSize-h.ImageOffset) != imageSize {
		return nil, ErrInconsistentSize
	}

	if h.ImageOffset < headerLen {
		return nil, ErrInvalidOffset
	}

	// There may be padding between the color table and the pixel data
	tableLen := colorTableLen(h.BitsPerPixel) * colorEntryLen
	if uint64(h.ImageOffset-headerLen) < uint64(tableLen) {
		return nil, ErrColorTableOverflow
	}

	pixels := uint64(h.Width) * uint64(h.Height)
	if pixels > math.MaxInt/PixelSize {
		return nil, ErrSizeOverflow
	}
	size := int(pixels) * PixelSize

	var allocated bool
	if dst == nil {
		alloc := d.Alloc
		if alloc == nil {
			alloc = defaultAlloc
		}
		if dst = alloc(size); dst == nil || len(dst) < size {
			return nil, ErrOutOfMemory
		}
		allocated = true
	} else if len(dst) < size {
		return nil, &BufferTooSmallError{Required: size}
	}

	dd := decoder{
		width:   int(h.Width),
		palette: b[headerLen : headerLen+tableLen],
	}

	var expand func(dst, src []byte)
	switch h.BitsPerPixel {
	case 1:
		expand = dd.expand1
	case 4:
		expand = dd.expand4
	case 8:
		expand = dd.expand8
	case 24:
		expand = dd.expand24
	default:
		if allocated && d.Free != nil {
			d.Free(dst)
		}
		return nil, ErrUnsupportedFormat
	}

	width, height := int(h.Width), int(h.Height)
	line, rowBytes := int(stride), width*PixelSize
	pix := b[h.ImageOffset:]
	out := dst[:size]

	// Rows are stored bottom-up. A zero width image has no rows to expand
	// whatever its height.
	if rowBytes > 0 {
		for y := 0; y < height; y++ {
			expand(out[y*rowBytes:(y+1)*rowBytes], pix[(height-1-y)*line:(height-y)*line])
		}
	}

	return &Buffer{
		Pix:    out,
		Width:  width,
		Height: height,
	}, nil
}

// DecodeImage reads a BMP image from r and returns it as an image.Image. The
// whole of r is read into memory first.
func DecodeImage(r io.Reader) (image.Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, err := Decode(b, nil)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeConfig returns the color model and dimensions of a BMP image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var b [headerLen]byte
	if err := readFull(r, b[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return image.Config{}, err
		}
		return image.Config{}, ErrTruncatedHeader
	}

	h, err := ReadHeader(b[:])
	if err != nil {
		return image.Config{}, err
	}

	if colorTableLen(h.BitsPerPixel) == 0 && h.BitsPerPixel != 24 {
		return image.Config{}, ErrUnsupportedFormat
	}

	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
