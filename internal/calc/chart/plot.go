package chart

import (
	"fmt"
	"io"

	"Shortcircuit/internal/calc/fault"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	Title  = "Three-Phase Generator bolted Short circuit current"
	XLabel = "Time in seconds"
	YLabel = "Short circuit current in Ampere"

	LegendInstantaneous = "Iassymetrical(total)-instantaneous"
	LegendRMS           = "Iassymetrical(total)-rms"
	LegendAC            = "Iac-rms"
	LegendDC            = "Idc"
)

var (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Curve pairs a legend label with its samples.
type Curve struct {
	Name   string
	Values []float64
}

// Curves lists the four components in drawing order.
func Curves(s fault.Series) []Curve {
	return []Curve{
		{LegendInstantaneous, s.InstantaneousAsymmetrical},
		{LegendRMS, s.RMSAsymmetrical},
		{LegendAC, s.RMSAC},
		{LegendDC, s.DCOffset},
	}
}

// Plot draws the four curves on one axis with grid lines and the legend at
// the upper centre.
func Plot(s fault.Series) (*plot.Plot, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("empty series")
	}
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Add(plotter.NewGrid())

	for i, c := range Curves(s) {
		if len(c.Values) != s.Len() {
			return nil, fmt.Errorf("%s: %d samples for %d instants", c.Name, len(c.Values), s.Len())
		}
		pts := make(plotter.XYs, s.Len())
		for j := range pts {
			pts[j].X = s.Time[j]
			pts[j].Y = c.Values[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(c.Name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// centerLegend shifts the right-aligned legend to the middle of a canvas of
// the given size.
func centerLegend(p *plot.Plot, width, height vg.Length) {
	c := draw.New(vgimg.New(width, height))
	r := p.Legend.Rectangle(c)
	p.Legend.Left = false
	p.Legend.XOffs = -((c.Max.X - c.Min.X) - (r.Max.X - r.Min.X)) / 2
}

// Write renders s as png, svg, jpg, tiff or pdf. Zero sizes use the defaults.
func Write(w io.Writer, s fault.Series, format string, width, height vg.Length) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	p, err := Plot(s)
	if err != nil {
		return err
	}
	centerLegend(p, width, height)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
