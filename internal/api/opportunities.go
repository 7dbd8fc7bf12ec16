package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
	"github.com/JakeFAU/opportunity-discovery/internal/source"
)

type discoverResponse struct {
	opportunity.Page
	FailedSources []string `json:"failed_sources"`
}

type searchResponse struct {
	Source        string                    `json:"source"`
	Opportunities []opportunity.Opportunity `json:"opportunities"`
}

type exhaustedResponse struct {
	Error    string            `json:"error"`
	Attempts map[string]string `json:"attempts"`
}

func (s *Server) filterFromRequest(w http.ResponseWriter, r *http.Request) (opportunity.Filter, bool) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	if err := s.validate.Struct(f); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return f, false
	}
	return f, true
}

func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	f, ok := s.filterFromRequest(w, r)
	if !ok {
		return
	}
	page, err := s.deps.Store.Query(r.Context(), f)
	if err != nil {
		s.logger.Error("query opportunities failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to query opportunities")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) getOpportunity(w http.ResponseWriter, r *http.Request) {
	opp, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "opportunity_id"))
	switch {
	case errors.Is(err, opportunity.ErrNotFound):
		writeError(w, http.StatusNotFound, "opportunity not found")
	case err != nil:
		s.logger.Error("get opportunity failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load opportunity")
	default:
		writeJSON(w, http.StatusOK, opp)
	}
}

// discoverOpportunities always answers 200; failing sources are listed.
func (s *Server) discoverOpportunities(w http.ResponseWriter, r *http.Request) {
	f, ok := s.filterFromRequest(w, r)
	if !ok {
		return
	}
	result := s.deps.Discoverer.Collect(r.Context(), source.Hints{
		Keyword:  f.Keyword,
		Location: f.Location,
		Category: f.Category,
	})
	failed := result.Failed()
	if failed == nil {
		failed = []string{}
	}
	writeJSON(w, http.StatusOK, discoverResponse{
		Page:          s.deps.Filter.Apply(result.Records, f),
		FailedSources: failed,
	})
}

func (s *Server) searchJobs(w http.ResponseWriter, r *http.Request) {
	sq, err := parseSearch(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(sq); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	res, err := s.deps.Searcher.Search(r.Context(), source.Hints{
		Keyword:  sq.Keyword,
		Location: sq.Location,
		Page:     sq.Page,
		PageSize: sq.PageSize,
	})
	var exhausted *opportunity.AllProvidersExhaustedError
	switch {
	case errors.As(err, &exhausted):
		attempts := make(map[string]string, len(exhausted.Attempts))
		for _, a := range exhausted.Attempts {
			attempts[a.Source] = a.Err.Error()
		}
		writeJSON(w, http.StatusBadGateway, exhaustedResponse{Error: "all job search providers failed", Attempts: attempts})
	case err != nil:
		s.logger.Error("job search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "job search failed")
	default:
		writeJSON(w, http.StatusOK, searchResponse{Source: res.Source, Opportunities: res.Records})
	}
}

// triggerAggregation starts a pass that outlives the request.
func (s *Server) triggerAggregation(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Passes.Trigger(context.WithoutCancel(r.Context())) {
		writeError(w, http.StatusConflict, aggregate.ErrPassInProgress.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) latestAggregation(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.deps.Passes.LastReport()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no pass has finished yet", "running": s.deps.Passes.Running()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report, "running": s.deps.Passes.Running()})
}
