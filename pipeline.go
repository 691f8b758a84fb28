package bmpblt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/bmpblt/blt"
)

const numWorkers = 10

type scanFile struct {
	path string
	name string
}

func isDecodeError(err error) bool {
	for _, e := range []error{
		blt.ErrTruncatedHeader,
		blt.ErrNotBMP,
		blt.ErrUnsupportedHeader,
		blt.ErrUnsupportedCompression,
		blt.ErrUnsupportedFormat,
		blt.ErrInconsistentSize,
		blt.ErrInvalidOffset,
		blt.ErrColorTableOverflow,
		blt.ErrSizeOverflow,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func (s *Splash) findFiles(ctx context.Context, base string) (<-chan scanFile, <-chan error, error) {
	out := make(chan scanFile)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".bmp") {
				return nil
			}

			name, err := filepath.Rel(base, file)
			if err != nil {
				return err
			}

			select {
			case out <- scanFile{path: file, name: filepath.ToSlash(name)}:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (s *Splash) importWorker(ctx context.Context, in <-chan scanFile) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for f := range in {
			b, err := os.ReadFile(f.path)
			if err != nil {
				errc <- err
				return
			}

			if _, err := s.db.AddResource(f.name, b); err != nil {
				if !isDecodeError(err) {
					errc <- err
					return
				}
				s.logger.Printf("Skipping \"%s\": %s\n", f.path, err)
				continue
			}
			s.logger.Printf("Imported \"%s\" as \"%s\"\n", f.path, f.name)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan imports every BMP file found under path, named by its path relative
// to path. Files that aren't valid images are logged and skipped.
func (s *Splash) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := s.importWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
