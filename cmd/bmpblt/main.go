package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/bmpblt"
	"github.com/bodgit/bmpblt/blt"
	"github.com/bodgit/bmpblt/display"
	"github.com/urfave/cli/v2"
)

const defaultDB = "bmpblt.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", blt.DecodeImage, blt.DecodeConfig)
}

func parseMode(s string) (display.Mode, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return display.Mode{}, fmt.Errorf("invalid mode %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return display.Mode{}, fmt.Errorf("invalid mode %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return display.Mode{}, fmt.Errorf("invalid mode %q", s)
	}
	return display.Mode{Width: width, Height: height}, nil
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openSplash(c *cli.Context) (*bmpblt.Splash, error) {
	s, err := bmpblt.New(c.String("db"), newLogger(c))
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return s, nil
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	for _, file := range c.Args().Slice() {
		b, err := os.ReadFile(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		h, err := blt.ReadHeader(b)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
		}
		status := "ok"
		if _, err := blt.Decode(b, nil); err != nil {
			status = err.Error()
		}
		fmt.Fprintf(c.App.Writer, "%s: %s (%s)\n", file, h, status)
	}

	return nil
}

func render(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	var modes []display.Mode
	for _, m := range c.StringSlice("mode") {
		mode, err := parseMode(m)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		modes = append(modes, mode)
	}

	s, err := openSplash(c)
	if err != nil {
		return err
	}
	defer s.Close()

	surface := display.NewMemorySurface(modes...)
	if _, err := s.Show(c.Args().First(), surface); err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := writePNG(c.String("out"), surface.Image()); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, m); err != nil {
		return err
	}

	return f.Close()
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	in, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer in.Close()

	m, _, err := image.Decode(in)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	out, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer out.Close()

	if err := blt.Encode(out, m, c.Int("bpp")); err != nil {
		return cli.NewExitError(err, 1)
	}

	return out.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "bmpblt"
	app.Usage = "BMP splash image management utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BMPBLT_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Import BMP images",
			Description: "Each image is stored under its base name.",
			ArgsUsage:   "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := openSplash(c)
				if err != nil {
					return err
				}
				defer s.Close()

				if err := s.Import(c.Args().Slice()...); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Import every BMP image under a directory",
			Description: "Each image is stored under its path relative to the directory.",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := openSplash(c)
				if err != nil {
					return err
				}
				defer s.Close()

				if err := s.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List stored images",
			Action: func(c *cli.Context) error {
				s, err := openSplash(c)
				if err != nil {
					return err
				}
				defer s.Close()

				resources, err := s.DB().Resources()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, r := range resources {
					fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%d bpp\t%s\n", r.Name, r.Width, r.Height, r.BitsPerPixel, r.SHA1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print the header of BMP files",
			ArgsUsage: "FILE...",
			Action:    info,
		},
		{
			Name:        "render",
			Usage:       "Tile a stored image across a screen and save it as PNG",
			Description: "The largest of the given modes is used.",
			ArgsUsage:   "NAME",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:  "mode",
					Value: cli.NewStringSlice("640x480", "800x600", "1024x768"),
					Usage: "available screen mode as WIDTHxHEIGHT",
				},
				&cli.StringFlag{
					Name:  "out",
					Value: "screen.png",
					Usage: "output file",
				},
			},
			Action: render,
		},
		{
			Name:      "convert",
			Usage:     "Convert an image to BMP",
			ArgsUsage: "IN OUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "bpp",
					Value: 24,
					Usage: "bits per pixel, one of 1, 4, 8 or 24",
				},
			},
			Action: convert,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
