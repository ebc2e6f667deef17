package preset

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"Shortcircuit/internal/auth"
	"Shortcircuit/internal/calc/fault"
	"Shortcircuit/internal/repo"

	"github.com/gorilla/mux"
)

type PresetHandler struct {
	Repo repo.PresetRepository
}

type CreateRequest struct {
	Name       string                  `json:"name"`
	Parameters fault.MachineParameters `json:"parameters"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func presetID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func (h *PresetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Name required", http.StatusBadRequest)
		return
	}
	if err := req.Parameters.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.Repo.CreatePreset(r.Context(), userID, req.Name, req.Parameters)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			http.Error(w, "Preset already exists", http.StatusConflict)
			return
		}
		log.Printf("CreatePreset Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListPresets(r.Context(), userID)
	if err != nil {
		log.Printf("ListPresets Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// load resolves the {id} path variable to a preset owned by the caller.
func (h *PresetHandler) load(w http.ResponseWriter, r *http.Request) (repo.Preset, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Preset{}, false
	}
	id, ok := presetID(r)
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return repo.Preset{}, false
	}
	p, err := h.Repo.GetPreset(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Preset not found", http.StatusNotFound)
			return repo.Preset{}, false
		}
		log.Printf("GetPreset Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Preset{}, false
	}
	return p, true
}

func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.load(w, r); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := presetID(r)
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeletePreset(r.Context(), userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Preset not found", http.StatusNotFound)
			return
		}
		log.Printf("DeletePreset Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calc evaluates a stored preset. The body may override the time grid and
// request the ordering check; an empty body uses the defaults.
func (h *PresetHandler) Calc(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	var input fault.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	input.MachineParameters = p.Parameters
	res, err := fault.Evaluate(input)
	if err != nil {
		http.Error(w, err.Error(), fault.StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
