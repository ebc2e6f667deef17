package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"Shortcircuit/internal/calc/fault"

	"github.com/xuri/excelize/v2"
)

const MaxUploadSize = 10 << 20

type Row struct {
	Row     int           `json:"row"`
	Name    string        `json:"name"`
	Summary fault.Summary `json:"summary"`
}

type RowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type ImportResult struct {
	Count   int        `json:"count"`
	Results []Row      `json:"results"`
	Errors  []RowError `json:"errors,omitempty"`
}

// Read evaluates every data row of the first sheet of an xlsx workbook.
// Expected columns: name, then the ten machine parameters in fault.Fields
// order. Rows that fail are reported and skipped.
func Read(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return ImportResult{}, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	out := ImportResult{Results: []Row{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		name := ""
		if len(row) > 0 {
			name = row[0]
		}
		sum, err := evaluateRow(row)
		if err != nil {
			out.Errors = append(out.Errors, RowError{Row: i + 1, Name: name, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, Row{Row: i + 1, Name: name, Summary: sum})
	}
	out.Count = len(out.Results)
	return out, nil
}

func evaluateRow(row []string) (fault.Summary, error) {
	raw := make(map[fault.Field]string, len(fault.Fields))
	for j, spec := range fault.Fields {
		if j+1 < len(row) {
			raw[spec.Name] = row[j+1]
		}
	}
	p, err := fault.ParseParameters(raw)
	if err != nil {
		return fault.Summary{}, err
	}
	s, err := fault.Calculate(p, fault.DefaultTimeGrid())
	if err != nil {
		return fault.Summary{}, err
	}
	return fault.Summarize(p, s), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// Handler accepts a multipart upload; MaxUpload of zero means MaxUploadSize.
type Handler struct {
	MaxUpload int64
}

func (h *Handler) Fault(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUpload
	if limit <= 0 {
		limit = MaxUploadSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := Read(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
