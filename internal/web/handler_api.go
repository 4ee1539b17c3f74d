package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/toyinv/internal/domain"
	"github.com/vbonduro/toyinv/internal/gateway"
	"github.com/vbonduro/toyinv/internal/store"
)

const maxAPIBody = 1 << 20

// The /api/toys handlers expose the collection in the gateway envelope so
// another toyinv instance can use this one as its remote gateway.

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	toys, err := s.collection.List(r.Context())
	if err != nil {
		s.apiError(w, err, "list toys")
		return
	}
	s.writeJSON(w, http.StatusOK, gateway.OK(toys))
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("name is required"))
		return
	}
	if fields.Category == nil || !fields.Category.Valid() {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("category is invalid"))
		return
	}

	toy, err := s.collection.Create(r.Context(), fields)
	if err != nil {
		s.apiError(w, err, "create toy")
		return
	}
	s.writeJSON(w, http.StatusCreated, gateway.OK(toy))
}

func (s *Server) handleAPIUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fields, ok := s.decodeFields(w, r)
	if !ok {
		return
	}
	if fields.Category != nil && !fields.Category.Valid() {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("category is invalid"))
		return
	}

	toy, err := s.collection.Update(r.Context(), id, fields)
	if err != nil {
		s.apiError(w, err, "update toy")
		return
	}
	s.writeJSON(w, http.StatusOK, gateway.OK(toy))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodeFields(w http.ResponseWriter, r *http.Request) (domain.ToyFields, bool) {
	var fields domain.ToyFields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	if err := dec.Decode(&fields); err != nil {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("invalid request body"))
		return fields, false
	}
	if fields.Price != nil && *fields.Price < 0 {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("price must be 0 or more"))
		return fields, false
	}
	if fields.Price != nil && *fields.Price > domain.MaxPrice {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("price must be at most 1000000000"))
		return fields, false
	}
	if fields.Rating != nil && (*fields.Rating < 0 || *fields.Rating > domain.MaxRating) {
		s.writeJSON(w, http.StatusBadRequest, gateway.Fail("rating must be between 0 and 5"))
		return fields, false
	}
	return fields, true
}

// apiError maps collection errors: unknown ids are 404, anything else is a
// failure of the backing collection.
func (s *Server) apiError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, gateway.Fail("toy not found"))
		return
	}
	s.logger.Error("api "+op+" failed", "error", err)
	s.writeJSON(w, http.StatusBadGateway, gateway.Fail("failed to "+op))
}

// writeJSON encodes v before writing the header so an encoding failure
// becomes a 500 instead of a truncated 2xx.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response failed", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(gateway.Fail("failed to encode response"))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Debug("write response failed", "error", err)
	}
}
