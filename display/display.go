/*
Package display paints decoded images onto a display surface.

A Surface offers a number of modes, each with a fixed resolution, and copies
rectangles of a decoded buffer onto the screen. The usual sequence is to pick
the mode with the most pixels, switch to it and then repeat the image across
the whole screen.
*/
package display

import (
	"errors"

	"github.com/bodgit/bmpblt/blt"
)

var (
	// ErrNoModes is returned when a surface offers no modes.
	ErrNoModes = errors.New("display: no modes available")
	// ErrInvalidMode is returned when querying or setting a mode that
	// doesn't exist.
	ErrInvalidMode = errors.New("display: invalid mode")
	// ErrOutOfBounds is returned when a blit falls outside the source or
	// the screen.
	ErrOutOfBounds = errors.New("display: rectangle out of bounds")
	// ErrEmptyImage is returned when tiling an image with no pixels.
	ErrEmptyImage = errors.New("display: empty image")
)

// Mode is a screen resolution.
type Mode struct {
	Width  int
	Height int
}

// Pixels returns the number of pixels on screen in this mode.
func (m Mode) Pixels() int {
	return m.Width * m.Height
}

// Surface is implemented by anything that can display a blt.Buffer.
type Surface interface {
	// MaxMode returns the number of modes, numbered from zero.
	MaxMode() int
	// QueryMode returns the resolution of mode n.
	QueryMode(n int) (Mode, error)
	// SetMode switches to mode n.
	SetMode(n int) error
	// Blt copies the width by height rectangle at (srcX, srcY) in src to
	// (dstX, dstY) on screen.
	Blt(src *blt.Buffer, srcX, srcY, dstX, dstY, width, height int) error
}

// SelectLargest returns the mode with the most pixels. If more than one mode
// has the same number the first one is returned.
func SelectLargest(s Surface) (int, Mode, error) {
	best, mode := -1, Mode{}
	for i := 0; i < s.MaxMode(); i++ {
		m, err := s.QueryMode(i)
		if err != nil {
			return 0, Mode{}, err
		}
		if best < 0 || m.Pixels() > mode.Pixels() {
			best, mode = i, m
		}
	}
	if best < 0 {
		return 0, Mode{}, ErrNoModes
	}
	return best, mode, nil
}

// Tile repeats src across a screen of the given mode starting from the top
// left corner. Copies that would run off the right or bottom edge are
// clipped.
func Tile(s Surface, src *blt.Buffer, m Mode) error {
	if src.Width <= 0 || src.Height <= 0 {
		return ErrEmptyImage
	}

	for y := 0; y < m.Height; y += src.Height {
		h := src.Height
		if m.Height-y < h {
			h = m.Height - y
		}
		for x := 0; x < m.Width; x += src.Width {
			w := src.Width
			if m.Width-x < w {
				w = m.Width - x
			}
			if err := s.Blt(src, 0, 0, x, y, w, h); err != nil {
				return err
			}
		}
	}

	return nil
}
