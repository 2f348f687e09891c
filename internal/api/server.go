package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/hierarchy"
	"github.com/todmy/ahp/internal/report"
	"github.com/todmy/ahp/internal/session"
	"github.com/todmy/ahp/internal/storage"
)

// ServerConfig holds the collaborators of the HTTP server
type ServerConfig struct {
	Sessions       *session.Manager
	HierarchyRepo  storage.HierarchyRepository // optional
	FetchTimeout   time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger

	// AllowedHierarchyHosts lists the hosts a client may name in a
	// hierarchy URL. Empty disables URL sources.
	AllowedHierarchyHosts []string
}

type Server struct {
	router        *chi.Mux
	sessions      *session.Manager
	hierarchyRepo storage.HierarchyRepository
	fetchTimeout  time.Duration
	fetchHosts    map[string]bool
	logger        *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewManager(cfg.Logger)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "https://*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s := &Server{
		router:        r,
		sessions:      cfg.Sessions,
		hierarchyRepo: cfg.HierarchyRepo,
		fetchTimeout:  cfg.FetchTimeout,
		fetchHosts:    make(map[string]bool, len(cfg.AllowedHierarchyHosts)),
		logger:        cfg.Logger,
	}
	for _, h := range cfg.AllowedHierarchyHosts {
		s.fetchHosts[strings.ToLower(h)] = true
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/scale", s.handleScale)
		r.Get("/hierarchies", s.handleListHierarchies)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Delete("/{sessionID}", s.handleDeleteSession)
			r.Get("/{sessionID}/hierarchy", s.handleGetHierarchy)

			// Evaluation
			r.Get("/{sessionID}/nodes/{name}", s.handleGetNode)
			r.Get("/{sessionID}/nodes/{name}/comparisons", s.handleGetComparisons)
			r.Post("/{sessionID}/nodes/{name}/evaluate", s.handleEvaluate)

			// Results
			r.Get("/{sessionID}/alternatives", s.handleGetAlternatives)
			r.Get("/{sessionID}/report", s.handleGetReport)
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// hostAllowed reports whether a hierarchy may be fetched from host
func (s *Server) hostAllowed(host string) bool {
	return s.fetchHosts[strings.ToLower(host)]
}

// fetchClient returns the client used for client-supplied hierarchy URLs.
// Redirects are held to the same host allowlist.
func (s *Server) fetchClient() *http.Client {
	return &http.Client{
		Timeout: s.fetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			if !s.hostAllowed(req.URL.Hostname()) {
				return fmt.Errorf("redirect to host %q not allowed", req.URL.Hostname())
			}
			return nil
		},
	}
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps core errors onto HTTP statuses
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, hierarchy.ErrNodeNotFound),
		errors.Is(err, storage.ErrHierarchyNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, comparison.ErrIncompleteJudgments):
		respondError(w, http.StatusUnprocessableEntity, "cannot evaluate yet: "+err.Error())
	case errors.Is(err, report.ErrIncomplete):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, comparison.ErrInvalidStrength),
		errors.Is(err, comparison.ErrInvalidDirection),
		errors.Is(err, comparison.ErrUnknownPair),
		errors.Is(err, hierarchy.ErrLeafNode),
		errors.Is(err, hierarchy.ErrEmptyHierarchy),
		errors.Is(err, hierarchy.ErrDuplicateNode):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
