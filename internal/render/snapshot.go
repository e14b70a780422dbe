package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/spin.report/internal/trajectory"
)

// Default snapshot size, 16:9.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 6.75 * vg.Inch
)

// quadrantSize is the half-length of the axis overlay in pixels.
const quadrantSize = 80

var (
	actualColor         = color.RGBA{G: 200, A: 255}
	counterfactualColor = color.RGBA{R: 220, A: 255}
	quadrantColor       = color.RGBA{G: 200, B: 220, A: 255}
)

// newSnapshotPlot builds the chart. The y axis is inverted so the picture
// matches image coordinates.
func newSnapshotPlot(in Input) (*plot.Plot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = deviationLabel(in.DeviationDeg)
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "Y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := addTrail(p, in.Actual, actualColor, vg.Points(2), actualLegend); err != nil {
		return nil, fmt.Errorf("actual trail: %w", err)
	}
	if !in.Counterfactual.IsEmpty() {
		if err := addTrail(p, in.Counterfactual, counterfactualColor, vg.Points(1.5), counterfactualLegend); err != nil {
			return nil, fmt.Errorf("counterfactual trail: %w", err)
		}
	}

	if in.Bounce.Frame > 0 {
		if err := addQuadrant(p, in.Bounce.Position); err != nil {
			return nil, fmt.Errorf("bounce overlay: %w", err)
		}
	}
	return p, nil
}

func addTrail(p *plot.Plot, l *trajectory.Log, c color.Color, width vg.Length, legend string) error {
	pts := make(plotter.XYs, 0, l.Len())
	for _, pt := range l.Points() {
		pts = append(pts, plotter.XY{X: pt.X, Y: pt.Y})
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = width
	points.Shape = draw.CircleGlyph{}
	points.Color = c
	points.Radius = vg.Points(2.5)

	p.Add(line, points)
	p.Legend.Add(legend, line, points)
	return nil
}

// addQuadrant marks the bounce with a ring and a +/-X, +/-Y cross. Image y
// grows downward, so +Y is drawn above the bounce.
func addQuadrant(p *plot.Plot, origin trajectory.Point) error {
	horizontal, err := plotter.NewLine(plotter.XYs{
		{X: origin.X - quadrantSize, Y: origin.Y},
		{X: origin.X + quadrantSize, Y: origin.Y},
	})
	if err != nil {
		return err
	}
	vertical, err := plotter.NewLine(plotter.XYs{
		{X: origin.X, Y: origin.Y - quadrantSize},
		{X: origin.X, Y: origin.Y + quadrantSize},
	})
	if err != nil {
		return err
	}
	for _, l := range []*plotter.Line{horizontal, vertical} {
		l.Color = quadrantColor
		l.Width = vg.Points(1)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{
			{X: origin.X + quadrantSize + 5, Y: origin.Y - 5},
			{X: origin.X - quadrantSize - 25, Y: origin.Y - 5},
			{X: origin.X + 5, Y: origin.Y + quadrantSize + 15},
			{X: origin.X + 5, Y: origin.Y - quadrantSize - 10},
		},
		Labels: []string{"+X", "-X", "-Y", "+Y"},
	})
	if err != nil {
		return err
	}

	marker, err := plotter.NewScatter(plotter.XYs{{X: origin.X, Y: origin.Y}})
	if err != nil {
		return err
	}
	marker.GlyphStyle.Shape = draw.RingGlyph{}
	marker.GlyphStyle.Radius = vg.Points(6)
	marker.GlyphStyle.Color = quadrantColor

	p.Add(horizontal, vertical, labels, marker)
	p.Legend.Add("Bounce", marker)
	return nil
}

// WriteSnapshot renders the chart to w. format is any extension gonum/plot
// can encode (png, svg, pdf, ...).
func WriteSnapshot(in Input, w io.Writer, format string, width, height vg.Length) error {
	p, err := newSnapshotPlot(in)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("snapshot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
