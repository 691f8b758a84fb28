package display

import (
	"image"
	"sync"

	"github.com/bodgit/bmpblt/blt"
)

// MemorySurface is a Surface that draws into an in-memory frame.
type MemorySurface struct {
	mu    sync.Mutex
	modes []Mode
	frame *image.RGBA
}

// NewMemorySurface returns a surface offering the given modes. No mode is
// set initially.
func NewMemorySurface(modes ...Mode) *MemorySurface {
	return &MemorySurface{
		modes: append([]Mode(nil), modes...),
	}
}

// MaxMode implements Surface.
func (s *MemorySurface) MaxMode() int {
	return len(s.modes)
}

// QueryMode implements Surface.
func (s *MemorySurface) QueryMode(n int) (Mode, error) {
	if n < 0 || n >= len(s.modes) {
		return Mode{}, ErrInvalidMode
	}
	return s.modes[n], nil
}

// SetMode implements Surface. The frame is cleared to black.
func (s *MemorySurface) SetMode(n int) error {
	m, err := s.QueryMode(n)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i := 3; i < len(s.frame.Pix); i += 4 {
		s.frame.Pix[i] = 0xff
	}
	return nil
}

// Blt implements Surface.
func (s *MemorySurface) Blt(src *blt.Buffer, srcX, srcY, dstX, dstY, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame == nil {
		return ErrInvalidMode
	}

	r := image.Rect(0, 0, width, height)
	if width < 0 || height < 0 ||
		!r.Add(image.Pt(srcX, srcY)).In(src.Bounds()) ||
		!r.Add(image.Pt(dstX, dstY)).In(s.frame.Rect) {
		return ErrOutOfBounds
	}

	for y := 0; y < height; y++ {
		from := src.Pix[src.PixOffset(srcX, srcY+y):]
		to := s.frame.Pix[s.frame.PixOffset(dstX, dstY+y):]
		for x := 0; x < width; x++ {
			to[x*4+0] = from[x*blt.PixelSize+0]
			to[x*4+1] = from[x*blt.PixelSize+1]
			to[x*4+2] = from[x*blt.PixelSize+2]
			to[x*4+3] = 0xff
		}
	}

	return nil
}

// Image returns a copy of the current frame, or nil if no mode is set.
func (s *MemorySurface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frame == nil {
		return nil
	}
	dup := *s.frame
	dup.Pix = append([]uint8(nil), s.frame.Pix...)
	return &dup
}
