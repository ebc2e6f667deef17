package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"Shortcircuit/internal/calc/fault"
)

type Handler struct{}

func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	var input fault.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := fault.Evaluate(input)
	if err != nil {
		http.Error(w, err.Error(), fault.StatusFor(err))
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, res.Parameters, res.Series); err != nil {
		log.Printf("xlsx export: %v", err)
		http.Error(w, "Workbook generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"fault-%s.xlsx\"", res.RunID))
	w.Write(buf.Bytes())
}
