package batch

import (
	"encoding/json"
	"log"
	"net/http"

	"Shortcircuit/internal/calc/fault"
)

type Handler struct {
	Workers int
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(r.Context(), input, h.Workers)
	if err != nil {
		status := fault.StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("fault batch: %v", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
