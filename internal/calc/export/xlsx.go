package export

import (
	"fmt"
	"io"

	"Shortcircuit/internal/calc/chart"
	"Shortcircuit/internal/calc/fault"

	"github.com/xuri/excelize/v2"
)

const (
	SeriesSheet     = "Series"
	ParametersSheet = "Parameters"
)

var seriesHeader = []interface{}{
	"Time (s)",
	chart.LegendInstantaneous + " (A)",
	chart.LegendRMS + " (A)",
	chart.LegendAC + " (A)",
	chart.LegendDC + " (A)",
}

// Workbook builds a spreadsheet with the sampled series, the machine
// parameters and a line chart of the four components.
func Workbook(p fault.MachineParameters, s fault.Series) (*excelize.File, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("empty series")
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSeries(f, s); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeParameters(f, p); err != nil {
		f.Close()
		return nil, err
	}
	if err := addChart(f, s.Len()); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook streams the workbook as xlsx.
func WriteWorkbook(w io.Writer, p fault.MachineParameters, s fault.Series) error {
	f, err := Workbook(p, s)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSeries(f *excelize.File, s fault.Series) error {
	if err := f.SetSheetRow(SeriesSheet, "A1", &seriesHeader); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.Time[i],
			s.InstantaneousAsymmetrical[i],
			s.RMSAsymmetrical[i],
			s.RMSAC[i],
			s.DCOffset[i],
		}
		if err := f.SetSheetRow(SeriesSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SeriesSheet, "A", "E", 22)
}

func writeParameters(f *excelize.File, p fault.MachineParameters) error {
	if _, err := f.NewSheet(ParametersSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ParametersSheet, "A1", &[]interface{}{"Parameter", "Value", "Description"}); err != nil {
		return err
	}
	for i, spec := range fault.Fields {
		row := []interface{}{string(spec.Name), p.Value(spec.Name), spec.Usage}
		if err := f.SetSheetRow(ParametersSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ParametersSheet, "A", "C", 24)
}

func addChart(f *excelize.File, n int) error {
	last := n + 1
	series := make([]excelize.ChartSeries, 0, 4)
	for col := 2; col <= 5; col++ {
		name, _ := excelize.ColumnNumberToName(col)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SeriesSheet, name),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SeriesSheet, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SeriesSheet, name, name, last),
		})
	}
	return f.AddChart(SeriesSheet, "G2", &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: chart.Title}},
		Legend: excelize.ChartLegend{Position: "top"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.XLabel}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.YLabel}}},
		Dimension: excelize.ChartDimension{
			Width:  960,
			Height: 480,
		},
	})
}
