package priority

import (
	"fmt"
	"log/slog"

	"github.com/todmy/ahp/internal/comparison"
	"github.com/todmy/ahp/internal/hierarchy"
)

// Service evaluates a parent node from pairwise judgments and stores the
// resulting local priorities on the hierarchy.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new priority service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Comparisons returns the empty judgment slots for the named parent
func (s *Service) Comparisons(h *hierarchy.Hierarchy, parent string) (comparison.Set, error) {
	node, err := h.Node(parent)
	if err != nil {
		return nil, err
	}
	if node.IsLeaf() {
		return nil, fmt.Errorf("%w: %q", hierarchy.ErrLeafNode, parent)
	}
	return comparison.Build(node.Children), nil
}

// Evaluate derives local priorities for parent from comparisons and writes
// them back. Nothing is written unless every pair has been judged.
func (s *Service) Evaluate(h *hierarchy.Hierarchy, parent string, comparisons []comparison.PairedComparison) ([]float64, error) {
	node, err := h.Node(parent)
	if err != nil {
		return nil, err
	}
	if node.IsLeaf() {
		return nil, fmt.Errorf("%w: %q", hierarchy.ErrLeafNode, parent)
	}

	priorities, err := Derive(node.Children, comparisons)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", parent, err)
	}

	if err := h.SetLocalPriorities(parent, priorities); err != nil {
		return nil, err
	}

	for _, c := range comparisons {
		if c.Judged() {
			s.logger.Debug("judgment",
				"node", parent,
				"a", c.NodeA,
				"b", c.NodeB,
				"direction", c.Direction.String(),
				"strength", c.Strength.Label(),
			)
		}
	}

	s.logger.Info("local priorities updated",
		"node", parent,
		"children", len(node.Children),
		"priorities", priorities,
	)
	return priorities, nil
}
