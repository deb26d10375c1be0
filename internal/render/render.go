// Package render draws the word cloud and the send-time heatmap as PNG
// images.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/psykhi/wordclouds"

	"github.com/bscott/mail-wordcloud/internal/wordfreq"
)

var (
	ErrUnknownWeighting = errors.New("unknown weighting")
	ErrNoWords          = errors.New("no words to draw")
)

// Weighting selects what the word cloud is sized by.
type Weighting string

const (
	Raw        Weighting = "raw"
	Normalized Weighting = "normalized"
)

// NormalizedScale turns normalized frequencies into the integer weights the
// word cloud takes.
const NormalizedScale = 10000

func ParseWeighting(s string) (Weighting, error) {
	switch w := Weighting(strings.ToLower(strings.TrimSpace(s))); w {
	case Raw, Normalized:
		return w, nil
	}
	return "", fmt.Errorf("%w: %q (want raw or normalized)", ErrUnknownWeighting, s)
}

// WeightsFor returns the word weights for mode. Raw keeps every counted
// word; normalized drops singletons.
func WeightsFor(mode Weighting, c wordfreq.Counts) (map[string]int, error) {
	switch mode {
	case Raw:
		weights := make(map[string]int, len(c))
		for w, n := range c {
			weights[w] = n
		}
		return weights, nil
	case Normalized:
		return wordfreq.Normalize(c).Weights(NormalizedScale), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWeighting, mode)
}

// DefaultColors is a viridis-like ramp, readable on a dark background.
var DefaultColors = []color.Color{
	color.RGBA{0x44, 0x01, 0x54, 0xff},
	color.RGBA{0x3b, 0x52, 0x8b, 0xff},
	color.RGBA{0x21, 0x90, 0x8c, 0xff},
	color.RGBA{0x5d, 0xc8, 0x63, 0xff},
	color.RGBA{0xfd, 0xe7, 0x25, 0xff},
}

type CloudOptions struct {
	FontPath    string
	Width       int
	Height      int
	Background  color.Color
	Colors      []color.Color
	MinFontSize int
	MaxFontSize int
}

func (o CloudOptions) withDefaults() CloudOptions {
	if o.Background == nil {
		o.Background = color.Black
	}
	if len(o.Colors) == 0 {
		o.Colors = DefaultColors
	}
	if o.MinFontSize <= 0 {
		o.MinFontSize = 10
	}
	if o.MaxFontSize <= 0 {
		o.MaxFontSize = o.Height / 6
	}
	if o.MaxFontSize < o.MinFontSize {
		o.MaxFontSize = o.MinFontSize
	}
	return o
}

// WordCloud draws weights and writes the image to w as PNG.
func WordCloud(w io.Writer, weights map[string]int, opts CloudOptions) error {
	if len(weights) == 0 {
		return ErrNoWords
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	// The drawing library panics on a font it cannot load.
	if err := CheckFont(opts.FontPath); err != nil {
		return err
	}
	opts = opts.withDefaults()

	cloud := wordclouds.NewWordcloud(
		weights,
		wordclouds.FontFile(opts.FontPath),
		wordclouds.Width(opts.Width),
		wordclouds.Height(opts.Height),
		wordclouds.FontMinSize(opts.MinFontSize),
		wordclouds.FontMaxSize(opts.MaxFontSize),
		wordclouds.Colors(opts.Colors),
		wordclouds.BackgroundColor(opts.Background),
	)

	if err := png.Encode(w, cloud.Draw()); err != nil {
		return fmt.Errorf("failed to encode word cloud: %w", err)
	}
	return nil
}

// CheckFont fails unless path is an existing regular file.
func CheckFont(path string) error {
	if path == "" {
		return errors.New("no font file configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("font %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("font %q is a directory", path)
	}
	return nil
}

// ParseColor parses "#rgb" or "#rrggbb".
func ParseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// WriteFile creates path and passes it to write. A failed write removes
// the partial file.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return write(f)
}
