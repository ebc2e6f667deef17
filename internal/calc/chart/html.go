package chart

import (
	"fmt"
	"io"
	"strconv"

	"Shortcircuit/internal/calc/fault"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// HTML renders an interactive page of the four curves.
func HTML(w io.Writer, s fault.Series) error {
	if s.Len() == 0 {
		return fmt.Errorf("empty series")
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: Title,
			Theme:     types.ThemeWesteros,
			Width:     "1200px",
			Height:    "640px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: Title,
			Left:  "center",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "30",
			Left: "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      XLabel,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      YLabel,
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithAnimation(false),
	)

	labels := make([]string, s.Len())
	for i, t := range s.Time {
		labels[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}
	line.SetXAxis(labels)
	for _, c := range Curves(s) {
		items := make([]opts.LineData, len(c.Values))
		for i, v := range c.Values {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(c.Name, items)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
		ShowSymbol: opts.Bool(false),
	}))
	return line.Render(w)
}
