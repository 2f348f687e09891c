package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/todmy/ahp/internal/hierarchy"
	"github.com/todmy/ahp/internal/report"
	"github.com/todmy/ahp/internal/session"
	"github.com/todmy/ahp/internal/source"
	"github.com/todmy/ahp/internal/storage"
)

const maxRequestSize = 5 << 20 // 5 MB

// CreateSessionRequest selects where the hierarchy comes from. Exactly one
// field must be set.
type CreateSessionRequest struct {
	Nodes       []hierarchy.Node `json:"nodes,omitempty"`
	URL         string           `json:"url,omitempty"`
	HierarchyID string           `json:"hierarchy_id,omitempty"`
}

// SessionResponse represents a session in API responses
type SessionResponse struct {
	ID        string       `json:"id"`
	CreatedAt string       `json:"created_at"`
	Root      NodeResponse `json:"root"`
}

// ChildResponse is one child of a node with its local priority
type ChildResponse struct {
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Value    *float64 `json:"value,omitempty"`
}

// NodeResponse represents a node view
type NodeResponse struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Evaluable      bool            `json:"evaluable"`
	Evaluated      bool            `json:"evaluated"`
	GlobalPriority string          `json:"global_priority"`
	Children       []ChildResponse `json:"children"`
}

// handleCreateSession loads a hierarchy and starts a session over it
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set := 0
	for _, ok := range []bool{len(req.Nodes) > 0, req.URL != "", req.HierarchyID != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		respondError(w, http.StatusBadRequest, "exactly one of nodes, url or hierarchy_id is required")
		return
	}

	var (
		sess *session.Session
		err  error
	)
	switch {
	case len(req.Nodes) > 0:
		sess, err = s.sessions.Create(req.Nodes)
	case req.URL != "":
		u, perr := url.Parse(req.URL)
		if perr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			respondError(w, http.StatusBadRequest, "invalid url")
			return
		}
		if !s.hostAllowed(u.Hostname()) {
			s.logger.Warn("hierarchy host not allowed", "host", u.Hostname())
			respondError(w, http.StatusForbidden, "hierarchy host not allowed")
			return
		}
		nodes, ferr := source.NewHTTP(req.URL, source.WithHTTPClient(s.fetchClient())).Load(r.Context())
		if ferr != nil {
			s.logger.Warn("failed to fetch hierarchy", "url", req.URL, "error", ferr)
			respondError(w, http.StatusBadGateway, "failed to load hierarchy data")
			return
		}
		sess, err = s.sessions.Create(nodes)
	default:
		if s.hierarchyRepo == nil {
			respondError(w, http.StatusServiceUnavailable, "hierarchy database not configured - set DATABASE_URL")
			return
		}
		hid, perr := uuid.Parse(req.HierarchyID)
		if perr != nil {
			respondError(w, http.StatusBadRequest, "invalid hierarchy id")
			return
		}
		var record *storage.HierarchyRecord
		record, err = s.hierarchyRepo.GetByID(r.Context(), hid)
		if err == nil {
			sess, err = s.sessions.Load(r.Context(), storage.NewHierarchySource(s.hierarchyRepo, hid))
		}
		if err == nil {
			s.logger.Info("session started from stored hierarchy",
				"session_id", sess.ID, "hierarchy_id", hid, "hierarchy", record.Name)
		}
	}
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

// handleGetSession returns a session with its root node view
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.sessionResponse(sess))
}

// handleGetHierarchy returns the session's nodes in load format, local
// priorities included, so an evaluation can be saved and reloaded
func (s *Server) handleGetHierarchy(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Hierarchy().Nodes())
}

// handleDeleteSession ends a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sid, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.sessions.Delete(sid); err != nil {
		s.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// sessionFromRequest resolves the {sessionID} URL parameter, writing an
// error response when it cannot.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	sid, err := uuid.Parse(sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}

	sess, err := s.sessions.Get(sid)
	if err != nil {
		s.respondDomainError(w, err)
		return nil, false
	}
	return sess, true
}

// nodeNameFromRequest returns the {name} URL parameter. chi matches on the
// raw path when the request carries escapes that Path cannot represent
// (such as %2F), and only then is the parameter still escaped.
func nodeNameFromRequest(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func (s *Server) sessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		ID:        sess.ID.String(),
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Root:      nodeResponse(sess, sess.Hierarchy().Root()),
	}
}

func nodeResponse(sess *session.Session, n hierarchy.Node) NodeResponse {
	resp := NodeResponse{
		Name:        n.Name,
		Description: n.Description,
		Evaluable:   !n.IsLeaf(),
		Evaluated:   n.Evaluated(),
		Children:    make([]ChildResponse, len(n.Children)),
	}

	if p, err := sess.GlobalPriority(n.Name); err == nil {
		resp.GlobalPriority = report.FormatPercent(p)
	}

	for i, child := range n.Children {
		resp.Children[i] = ChildResponse{Name: child}
		if i < len(n.LocalPriorities) {
			v := n.LocalPriorities[i]
			resp.Children[i].Priority = report.FormatPercent(v)
			resp.Children[i].Value = &v
		}
	}
	return resp
}
