package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"Shortcircuit/internal/calc/chart"
	"Shortcircuit/internal/calc/fault"

	"github.com/phpdave11/gofpdf"
	"gonum.org/v1/plot/vg"
)

type Input struct {
	Project string      `json:"project"`
	Author  string      `json:"author"`
	Title   string      `json:"title"`
	Notes   string      `json:"notes"`
	Machine fault.Input `json:"machine"`
}

// Write evaluates the machine and renders the report.
func Write(w io.Writer, in Input, now time.Time) error {
	res, err := fault.Evaluate(in.Machine)
	if err != nil {
		return err
	}
	return WriteResult(w, in, res, now)
}

// WriteResult lays out an A4 report for an evaluated machine: header, notes,
// parameter and result tables and the current plot. in.Machine is ignored.
func WriteResult(w io.Writer, in Input, res fault.Result, now time.Time) error {
	if in.Title == "" {
		in.Title = "Generator Short-Circuit Report"
	}

	var img bytes.Buffer
	if err := chart.Write(&img, res.Series, "png", 7*vg.Inch, 4*vg.Inch); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(in.Title, true)
	pdf.SetAuthor(in.Author, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, in.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", in.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", in.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", res.RunID))
	pdf.Ln(10)
	if in.Notes != "" {
		pdf.MultiCell(0, 6, in.Notes, "", "L", false)
		pdf.Ln(4)
	}

	table(pdf, "Machine parameters", parameterRows(res.Parameters))
	table(pdf, "Results", summaryRows(res.Summary, res.Grid))

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("chart", opt, &img)
	pdf.ImageOptions("chart", 10, 0, 190, 0, true, opt, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func table(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(95, 6, r[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, r[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func parameterRows(p fault.MachineParameters) [][2]string {
	rows := make([][2]string, 0, len(fault.Fields))
	for _, spec := range fault.Fields {
		rows = append(rows, [2]string{spec.Usage, fmt.Sprintf("%g", p.Value(spec.Name))})
	}
	return rows
}

func summaryRows(s fault.Summary, g fault.TimeGrid) [][2]string {
	amps := func(v float64) string { return fmt.Sprintf("%.1f A", v) }
	return [][2]string{
		{"Base current", amps(s.BaseCurrent)},
		{"Internal EMF (p.u.)", fmt.Sprintf("%.3f", s.EMF)},
		{"Initial symmetrical rms I''", amps(s.InitialSymmetrical)},
		{"Transient rms I'", amps(s.TransientCurrent)},
		{"Steady-state rms I", amps(s.SteadyStateCurrent)},
		{"Initial asymmetrical rms", amps(s.InitialAsymmetrical)},
		{"Peak instantaneous", fmt.Sprintf("%.1f A at %.3f s", s.PeakInstantaneous, s.PeakTime)},
		{"Time grid", fmt.Sprintf("%g..%g s step %g s (%d points)", g.Start, g.Stop, g.Step, s.Samples)},
	}
}

type Handler struct{}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := Write(&buf, input, time.Now()); err != nil {
		log.Printf("report: %v", err)
		status := fault.StatusFor(err)
		if status == http.StatusInternalServerError {
			http.Error(w, "Report generation error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
