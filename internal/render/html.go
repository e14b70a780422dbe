package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/spin.report/internal/trajectory"
)

// HTMLReport renders an interactive page with both trails and the bounce
// marked, using go-echarts.
func HTMLReport(in Input, w io.Writer) error {
	if err := in.validate(); err != nil {
		return err
	}

	subtitle := deviationLabel(in.DeviationDeg)
	if in.Bounce.Frame > 0 {
		subtitle = fmt.Sprintf("bounce frame %d, %s", in.Bounce.Frame, subtitle)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Bounce Trajectory", Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Bounce Trajectory", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (px)", NameLocation: "middle", NameGap: 40}),
	)

	actualOpts := []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: "#00c853"})}
	if in.Bounce.Frame > 0 {
		actualOpts = append(actualOpts, charts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
			Name:       fmt.Sprintf("Bounce (frame %d)", in.Bounce.Frame),
			Coordinate: []interface{}{in.Bounce.Position.X, in.Bounce.Position.Y},
		}))
	}
	line.AddSeries(actualLegend, lineData(in.Actual), actualOpts...)
	if !in.Counterfactual.IsEmpty() {
		line.AddSeries(counterfactualLegend, lineData(in.Counterfactual),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d50000"}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func lineData(l *trajectory.Log) []opts.LineData {
	data := make([]opts.LineData, 0, l.Len())
	for _, s := range l.Samples() {
		data = append(data, opts.LineData{Name: fmt.Sprintf("frame %d", s.Frame), Value: []interface{}{s.X, s.Y}})
	}
	return data
}
