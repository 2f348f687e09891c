package api

import (
	"net/http"

	"github.com/todmy/ahp/internal/comparison"
)

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScale returns the judgment scale a UI must present
func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, comparison.Scale())
}

// HierarchyResponse represents a stored hierarchy definition
type HierarchyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// handleListHierarchies lists the definitions available in the database
func (s *Server) handleListHierarchies(w http.ResponseWriter, r *http.Request) {
	if s.hierarchyRepo == nil {
		respondError(w, http.StatusServiceUnavailable, "hierarchy database not configured - set DATABASE_URL")
		return
	}

	records, err := s.hierarchyRepo.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list hierarchies", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch hierarchies")
		return
	}

	response := make([]HierarchyResponse, 0, len(records))
	for _, h := range records {
		response = append(response, HierarchyResponse{
			ID:        h.ID.String(),
			Name:      h.Name,
			CreatedAt: h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt: h.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, http.StatusOK, response)
}
