package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reg.Snapshot()
	if err != nil {
		s.logger.Error("snapshot failed", "err", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	prop, ok := s.reg.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown property: "+name)
		return
	}

	data, err := prop.ValueJSON()
	if err != nil {
		s.logger.Error("encode property failed", "property", name, "err", err)
		writeError(w, http.StatusInternalServerError, "encode failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	prop, ok := s.reg.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown property: "+name)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}
	if err := prop.SetJSON(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Respond with the value as the property now holds it; a setter hook
	// may have normalized or rejected the write.
	data, err := prop.ValueJSON()
	if err != nil {
		s.logger.Error("encode property failed", "property", name, "err", err)
		writeError(w, http.StatusInternalServerError, "encode failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
