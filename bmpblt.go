/*
Package bmpblt is a library for keeping a collection of BMP splash images and
painting them across a display surface.
*/
package bmpblt

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/bmpblt/blt"
	"github.com/bodgit/bmpblt/display"
)

// ErrNotFound is returned when a named resource doesn't exist.
var ErrNotFound = errors.New("bmpblt: resource not found")

// Splash ties a ResourceDB to a display.
type Splash struct {
	db     *ResourceDB
	logger *log.Logger
}

// New opens, creating if necessary, the resource database in file.
func New(file string, logger *log.Logger) (*Splash, error) {
	db, err := NewResourceDB(file)
	if err != nil {
		return nil, err
	}

	return &Splash{
		db:     db,
		logger: logger,
	}, nil
}

// DB returns the underlying resource database.
func (s *Splash) DB() *ResourceDB {
	return s.db
}

// Close closes the resource database.
func (s *Splash) Close() error {
	return s.db.Close()
}

// Import adds each file to the database named after its base name.
func (s *Splash) Import(files ...string) error {
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		name := filepath.Base(file)
		if _, err := s.db.AddResource(name, b); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		s.logger.Printf("Imported \"%s\" as \"%s\"\n", file, name)
	}
	return nil
}

// Show decodes the named resource and tiles it across s using the mode with
// the highest resolution. The chosen mode is returned.
func (s *Splash) Show(name string, surface display.Surface) (display.Mode, error) {
	b, err := s.db.FindResource(name)
	if err != nil {
		return display.Mode{}, err
	}
	if b == nil {
		return display.Mode{}, ErrNotFound
	}

	m, err := blt.Decode(b, nil)
	if err != nil {
		return display.Mode{}, fmt.Errorf("%s: %w", name, err)
	}

	n, mode, err := display.SelectLargest(surface)
	if err != nil {
		return display.Mode{}, err
	}
	s.logger.Printf("Using mode %d, %dx%d\n", n, mode.Width, mode.Height)

	if err := surface.SetMode(n); err != nil {
		return display.Mode{}, err
	}

	if err := display.Tile(surface, m, mode); err != nil {
		return display.Mode{}, err
	}

	return mode, nil
}
