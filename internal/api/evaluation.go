package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/global"
	"github.com/todmy/ahp/internal/report"
)

// ComparisonsResponse lists the judgment slots for a parent node
type ComparisonsResponse struct {
	Node        string                  `json:"node"`
	Comparisons comparison.Set          `json:"comparisons"`
	Scale       []comparison.Preference `json:"scale"`
}

// EvaluateRequest carries the judgments for one parent node
type EvaluateRequest struct {
	Comparisons []comparison.PairedComparison `json:"comparisons"`
}

// AlternativeResponse is one leaf with its global priority, or the
// ancestors blocking it
type AlternativeResponse struct {
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Value    *float64 `json:"value,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

// AlternativesResponse represents the decision alternatives view
type AlternativesResponse struct {
	Title        string                `json:"title"`
	Header       string                `json:"header"`
	Info         string                `json:"info,omitempty"`
	Complete     bool                  `json:"complete"`
	MissingNodes []string              `json:"missing_nodes,omitempty"`
	Alternatives []AlternativeResponse `json:"alternatives"`
}

// handleGetNode returns a node with its children's local priorities
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	node, err := sess.Hierarchy().Node(nodeNameFromRequest(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nodeResponse(sess, node))
}

// handleGetComparisons returns the empty comparison set for a parent node
func (s *Server) handleGetComparisons(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	name := nodeNameFromRequest(r)
	set, err := sess.Comparisons(name)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ComparisonsResponse{
		Node:        name,
		Comparisons: set,
		Scale:       comparison.Scale(),
	})
}

// handleEvaluate derives local priorities from the submitted judgments
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, comparison.ErrInvalidDirection) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := nodeNameFromRequest(r)
	if _, err := sess.Evaluate(name, req.Comparisons); err != nil {
		s.respondDomainError(w, err)
		return
	}

	node, err := sess.Hierarchy().Node(name)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nodeResponse(sess, node))
}

// handleGetAlternatives returns every leaf with its global priority
func (s *Server) handleGetAlternatives(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	summary := sess.Alternatives()
	resp := AlternativesResponse{
		Title:        sess.Hierarchy().Root().Name,
		Complete:     summary.Complete(),
		Info:         summary.Message(),
		MissingNodes: summary.Missing,
		Alternatives: make([]AlternativeResponse, len(summary.Results)),
	}
	if resp.Complete {
		resp.Header = "Ratings of the alternatives:"
	} else {
		resp.Header = "Ratings of the alternatives are not available:"
	}

	for i, res := range summary.Results {
		alt := AlternativeResponse{Name: res.Name}
		if res.Resolved() {
			v := res.Priority
			alt.Priority = report.FormatPercent(v)
			alt.Value = &v
		} else {
			var missing *global.MissingDataError
			if errors.As(res.Err, &missing) {
				alt.Missing = missing.Causes
			}
		}
		resp.Alternatives[i] = alt
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleGetReport returns the results report once every alternative is rated
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	rep, err := sess.Report()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := rep.WriteJSON(w); err != nil {
		s.logger.Error("failed to write report", "error", err)
	}
}
