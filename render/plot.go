package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is a named sequence of samples of a quantity over time.
type Series struct {
	Name string
	X, Y []float64
}

// Add appends a sample to the series.
func (s *Series) Add(x, y float64) {
	s.X = append(s.X, x)
	s.Y = append(s.Y, y)
}

// PlotConfig labels a plot and sets its size.
type PlotConfig struct {
	Title, XLabel, YLabel string
	Width, Height         vg.Length
}

// PlotSeries draws series as lines on a single chart and saves it to path.
// The image format is chosen by the file extension.
func PlotSeries(path string, cfg PlotConfig, series ...Series) error {
	if len(series) == 0 {
		return errors.New("no series to plot")
	}
	if cfg.Width == 0 {
		cfg.Width = 6 * vg.Inch
	}
	if cfg.Height == 0 {
		cfg.Height = 4 * vg.Inch
	}
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.Add(plotter.NewGrid())
	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: %d x values and %d y values", s.Name, len(s.X), len(s.Y))
		}
		xys := make(plotter.XYs, len(s.X))
		for j := range xys {
			xys[j].X, xys[j].Y = s.X[j], s.Y[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	return p.Save(cfg.Width, cfg.Height, path)
}
