package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

const maxBodyBytes = 64 << 10

func (s *Server) listSaved(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	saved, err := s.deps.Saved.ListSaved(r.Context(), userID)
	if err != nil {
		s.logger.Error("list saved failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list saved opportunities")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved})
}

func (s *Server) saveOpportunity(w http.ResponseWriter, r *http.Request) {
	req := saveRequest{
		UserID:        chi.URLParam(r, "user_id"),
		OpportunityID: chi.URLParam(r, "opportunity_id"),
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if _, err := s.deps.Store.Get(r.Context(), req.OpportunityID); err != nil {
		if errors.Is(err, opportunity.ErrNotFound) {
			writeError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		s.logger.Error("load opportunity failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load opportunity")
		return
	}

	id, err := s.deps.IDs.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	saved, err := s.deps.Saved.Save(r.Context(), opportunity.SavedOpportunity{
		ID:            id,
		UserID:        req.UserID,
		OpportunityID: req.OpportunityID,
		Note:          req.Note,
		SavedAt:       s.deps.Clock.Now(),
	})
	if err != nil {
		s.logger.Error("save opportunity failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save opportunity")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteSaved(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Saved.Delete(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "opportunity_id"))
	switch {
	case errors.Is(err, opportunity.ErrNotFound):
		writeError(w, http.StatusNotFound, "saved opportunity not found")
	case err != nil:
		s.logger.Error("delete saved failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete saved opportunity")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
