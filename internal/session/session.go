package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/global"
	"github.com/todmy/ahp/internal/hierarchy"
	"github.com/todmy/ahp/internal/priority"
	"github.com/todmy/ahp/internal/report"
	"github.com/todmy/ahp/internal/source"
)

var ErrSessionNotFound = errors.New("session not found")

// Session owns one hierarchy for the duration of an evaluation. All writes
// to the hierarchy go through Evaluate.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	hierarchy *hierarchy.Hierarchy
	priority  *priority.Service
	resolver  *global.Resolver
}

// Hierarchy exposes the session's hierarchy for read-only traversal
func (s *Session) Hierarchy() *hierarchy.Hierarchy {
	return s.hierarchy
}

// Comparisons returns the empty judgment slots for a parent node
func (s *Session) Comparisons(parent string) (comparison.Set, error) {
	return s.priority.Comparisons(s.hierarchy, parent)
}

// Evaluate derives and stores local priorities for a parent node
func (s *Session) Evaluate(parent string, comparisons []comparison.PairedComparison) ([]float64, error) {
	return s.priority.Evaluate(s.hierarchy, parent, comparisons)
}

// GlobalPriority resolves one node against the root
func (s *Session) GlobalPriority(name string) (float64, error) {
	return s.resolver.Resolve(name)
}

// Alternatives resolves every leaf
func (s *Session) Alternatives() global.Summary {
	return s.resolver.ResolveAll()
}

// Report builds the results report, failing while any rating is missing
func (s *Session) Report() (*report.Report, error) {
	return report.Build(s.hierarchy.Root().Name, s.resolver.ResolveAll())
}

// Manager keeps the sessions of a running process
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *slog.Logger
}

// NewManager creates an empty session manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger,
	}
}

// Create starts a session over the given nodes
func (m *Manager) Create(nodes []hierarchy.Node) (*Session, error) {
	h, err := hierarchy.New(nodes)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		hierarchy: h,
		priority:  priority.NewService(m.logger),
		resolver:  global.NewResolver(h, m.logger),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", s.ID, "root", h.Root().Name, "nodes", h.Len())
	return s, nil
}

// Load reads nodes from src and starts a session over them
func (m *Manager) Load(ctx context.Context, src source.Source) (*Session, error) {
	nodes, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}
	return m.Create(nodes)
}

// Get returns a session by ID
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
