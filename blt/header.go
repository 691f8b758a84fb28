package blt

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 54 byte header found at the start of every BMP file.
type Header struct {
	Magic           [2]byte
	FileSize        uint32
	ImageOffset     uint32
	HeaderSize      uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

func parseHeader(b []byte) *Header {
	h := &Header{
		FileSize:        binary.LittleEndian.Uint32(b[2:6]),
		ImageOffset:     binary.LittleEndian.Uint32(b[10:14]),
		HeaderSize:      binary.LittleEndian.Uint32(b[14:18]),
		Width:           int32(binary.LittleEndian.Uint32(b[18:22])),
		Height:          int32(binary.LittleEndian.Uint32(b[22:26])),
		Planes:          binary.LittleEndian.Uint16(b[26:28]),
		BitsPerPixel:    binary.LittleEndian.Uint16(b[28:30]),
		Compression:     binary.LittleEndian.Uint32(b[30:34]),
		ImageSize:       binary.LittleEndian.Uint32(b[34:38]),
		XPixelsPerMeter: int32(binary.LittleEndian.Uint32(b[38:42])),
		YPixelsPerMeter: int32(binary.LittleEndian.Uint32(b[42:46])),
		ColorsUsed:      binary.LittleEndian.Uint32(b[46:50]),
		ColorsImportant: binary.LittleEndian.Uint32(b[50:54]),
	}
	copy(h.Magic[:], b[0:2])
	return h
}

func (h *Header) marshal(b []byte) {
	copy(b[0:2], h.Magic[:])
	binary.LittleEndian.PutUint32(b[2:6], h.FileSize)
	binary.LittleEndian.PutUint32(b[6:10], 0)
	binary.LittleEndian.PutUint32(b[10:14], h.ImageOffset)
	binary.LittleEndian.PutUint32(b[14:18], h.HeaderSize)
	binary.LittleEndian.PutUint32(b[18:22], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[22:26], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[26:28], h.Planes)
	binary.LittleEndian.PutUint16(b[28:30], h.BitsPerPixel)
	binary.LittleEndian.PutUint32(b[30:34], h.Compression)
	binary.LittleEndian.PutUint32(b[34:38], h.ImageSize)
	binary.LittleEndian.PutUint32(b[38:42], uint32(h.XPixelsPerMeter))
	binary.LittleEndian.PutUint32(b[42:46], uint32(h.YPixelsPerMeter))
	binary.LittleEndian.PutUint32(b[46:50], h.ColorsUsed)
	binary.LittleEndian.PutUint32(b[50:54], h.ColorsImportant)
}

// ReadHeader parses and checks the fixed header at the start of b. It does
// not check the header against the rest of the file, use Decode for that.
func ReadHeader(b []byte) (*Header, error) {
	if len(b) < headerLen {
		return nil, ErrTruncatedHeader
	}

	h := parseHeader(b)

	if h.Magic != [2]byte{'B', 'M'} {
		return nil, ErrNotBMP
	}

	if h.Compression != 0 {
		return nil, ErrUnsupportedCompression
	}

	if h.HeaderSize != infoHeaderLen {
		return nil, ErrUnsupportedHeader
	}

	// Negative heights mark top-down images which aren't supported
	if h.Width < 0 || h.Height < 0 {
		return nil, ErrUnsupportedFormat
	}

	return h, nil
}

func (h *Header) String() string {
	return fmt.Sprintf("%dx%d %d bpp, %d bytes, pixel data at %d", h.Width, h.Height, h.BitsPerPixel, h.FileSize, h.ImageOffset)
}
