package skel

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shimware/skel/classify"
	"github.com/shimware/skel/observability"
	"github.com/shimware/skel/spec"
)

// generateRequest is the POST /generate payload.
type generateRequest struct {
	Name   string          `json:"name"`
	HTML   string          `json:"html"`
	Params map[string]any  `json:"params,omitempty"`
	Rules  []classify.Rule `json:"rules,omitempty"`
	// Fallback, when set, makes the endpoint infallible: generation
	// errors return this spec (or the minimal one) with HTTP 200.
	Fallback *spec.Spec `json:"fallback,omitempty"`
}

// Routes returns the HTTP API router.
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/generate", s.handleGenerate)
	r.Post("/validate", s.handleValidate)
	r.Get("/specs/{key}", s.handleGetSpec)
	r.Get("/cache/export", s.handleExport)
	r.Post("/cache/import", s.handleImport)
	r.Get("/stats", s.handleStats)
	r.Get("/events", s.handleEvents)

	return r
}

func (s *Service) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" || req.HTML == "" {
		writeError(w, http.StatusBadRequest, errors.New("name and html are required"))
		return
	}

	if req.Fallback != nil {
		result := s.GenerateWithFallback(r.Context(), req.Name, []byte(req.HTML), req.Params, req.Fallback, req.Rules...)
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := s.Generate(r.Context(), req.Name, []byte(req.HTML), req.Params, req.Rules...)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Validation failures are a successful validation run; the result
	// carries the violations.
	writeJSON(w, http.StatusOK, s.ValidateJSON(data))
}

func (s *Service) handleGetSpec(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	result, ok := s.reg.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no spec under key "+strconv.Quote(key)))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, err := s.reg.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := s.reg.Import(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	events, err := s.events.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if events == nil {
		events = []observability.StoredEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
