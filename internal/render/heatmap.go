package render

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bscott/mail-wordcloud/internal/corpus"
)

type HeatmapOptions struct {
	Title string
	// Width and Height are in inches.
	Width  float64
	Height float64
	Colors int
}

func (o HeatmapOptions) withDefaults() HeatmapOptions {
	if o.Width <= 0 {
		o.Width = 8
	}
	if o.Height <= 0 {
		o.Height = 4
	}
	if o.Colors <= 0 {
		o.Colors = 64
	}
	return o
}

// grid adapts a histogram to plotter.GridXYZ. Columns are hours; rows are
// weekdays with Monday on the top row.
type grid struct {
	h *corpus.Histogram
}

func (g grid) Dims() (c, r int) { return 24, 7 }

func (g grid) Z(c, r int) float64 { return float64(g.h[6-r][c]) }

func (g grid) X(c int) float64 { return float64(c) }

func (g grid) Y(r int) float64 { return float64(r) }

func weekdayTicks() []plot.Tick {
	ticks := make([]plot.Tick, 0, len(corpus.Weekdays))
	for i, day := range corpus.Weekdays {
		ticks = append(ticks, plot.Tick{Value: float64(6 - i), Label: day})
	}
	return ticks
}

func hourTicks() []plot.Tick {
	var ticks []plot.Tick
	for hour := 0; hour < 24; hour += 6 {
		ticks = append(ticks, plot.Tick{Value: float64(hour), Label: fmt.Sprintf("%02d:00", hour)})
	}
	return ticks
}

// Heatmap plots h as a weekday by hour heatmap and writes it to w as PNG.
func Heatmap(w io.Writer, h corpus.Histogram, opts HeatmapOptions) error {
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Messages by weekday and hour (n=" + strconv.Itoa(h.Total()) + ")"
	}
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Day"
	p.X.Tick.Marker = plot.ConstantTicks(hourTicks())
	p.Y.Tick.Marker = plot.ConstantTicks(weekdayTicks())

	hm := plotter.NewHeatMap(grid{h: &h}, palette.Heat(opts.Colors, 1))
	// An all-zero grid has Min == Max, which the plotter cannot scale.
	hm.Min = 0
	hm.Max = float64(h.Max())
	if hm.Max == 0 {
		hm.Max = 1
	}
	p.Add(hm)

	wt, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render heatmap: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write heatmap: %w", err)
	}
	return nil
}
