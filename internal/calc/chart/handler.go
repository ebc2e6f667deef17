package chart

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"Shortcircuit/internal/calc/fault"
)

type Handler struct{}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) (fault.Result, bool) {
	var input fault.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return fault.Result{}, false
	}
	res, err := fault.Evaluate(input)
	if err != nil {
		http.Error(w, err.Error(), fault.StatusFor(err))
		return fault.Result{}, false
	}
	return res, true
}

// PNG answers with the rendered plot image.
func (h *Handler) PNG(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := Write(&buf, res.Series, "png", 0, 0); err != nil {
		log.Printf("plot render: %v", err)
		http.Error(w, "Plot generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// HTML answers with the interactive chart page.
func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	res, ok := h.evaluate(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := HTML(&buf, res.Series); err != nil {
		log.Printf("chart render: %v", err)
		http.Error(w, "Chart generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
