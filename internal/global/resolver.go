// Package global composes local priorities along a node's ancestor path
// into its priority relative to the hierarchy root.
//
// Missing data is transitive: if any ancestor on the path has children but
// no local priorities, the node has no global priority, and every such
// ancestor is reported as a cause. A node whose parent cannot be found, or
// whose ancestor chain loops, is unresolvable.
package global

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/todmy/ahp/internal/hierarchy"
)

var (
	ErrMissingAncestorData = errors.New("ancestor lacks local priorities")
	ErrUnresolvableNode    = errors.New("node cannot be resolved to the root")
)

// MissingDataError is returned instead of a priority when the ancestor path
// is incomplete. Causes lists the ancestors that still need evaluation.
type MissingDataError struct {
	Node   string
	Causes []string
	Err    error
}

func (e *MissingDataError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("%s: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Node, e.Err, strings.Join(e.Causes, ", "))
}

func (e *MissingDataError) Unwrap() error {
	return e.Err
}

// Resolver computes global priorities over one hierarchy
type Resolver struct {
	h      *hierarchy.Hierarchy
	logger *slog.Logger
}

// NewResolver creates a resolver bound to h
func NewResolver(h *hierarchy.Hierarchy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{h: h, logger: logger}
}

// Resolve returns the global priority of the named node. The root is 1.
// Errors are *MissingDataError or hierarchy.ErrNodeNotFound.
func (r *Resolver) Resolve(name string) (float64, error) {
	if _, err := r.h.Node(name); err != nil {
		return 0, err
	}

	result := 1.0
	var causes []string
	visited := map[string]bool{name: true}

	current := name
	for !r.h.IsRoot(current) {
		parent, ok := r.h.Parent(current)
		if !ok {
			return 0, &MissingDataError{Node: name, Causes: causes, Err: ErrUnresolvableNode}
		}
		if visited[parent.Name] {
			return 0, &MissingDataError{
				Node:   name,
				Causes: causes,
				Err:    fmt.Errorf("%w: cycle at %q", ErrUnresolvableNode, parent.Name),
			}
		}
		visited[parent.Name] = true

		index := parent.ChildIndex(current)
		if !parent.Evaluated() || index >= len(parent.LocalPriorities) {
			causes = append(causes, parent.Name)
		} else {
			result *= parent.LocalPriorities[index]
		}
		current = parent.Name
	}

	if len(causes) > 0 {
		return 0, &MissingDataError{Node: name, Causes: causes, Err: ErrMissingAncestorData}
	}
	return result, nil
}

// Result is the global priority of one alternative. Priority is meaningful
// only when Err is nil.
type Result struct {
	Name     string
	Priority float64
	Err      error
}

// Resolved reports whether a numeric priority is available
func (r Result) Resolved() bool {
	return r.Err == nil
}

// Summary is the outcome of resolving every alternative at once
type Summary struct {
	Results []Result
	// Missing holds the distinct ancestors that blocked resolution, in
	// hierarchy order.
	Missing []string
	// Unresolvable counts alternatives whose path to the root is broken.
	Unresolvable int
}

// Complete reports whether every alternative has a priority
func (s Summary) Complete() bool {
	for _, r := range s.Results {
		if !r.Resolved() {
			return false
		}
	}
	return true
}

// Message describes which nodes still need evaluation, or "" when none do
func (s Summary) Message() string {
	if len(s.Missing) == 0 {
		return ""
	}
	return fmt.Sprintf("'%s' and %d more nodes require evaluation.", s.Missing[0], len(s.Missing)-1)
}

// ResolveAll resolves every leaf of the hierarchy in hierarchy order. Child
// names that match no node are reported after the leaves as unresolvable.
func (r *Resolver) ResolveAll() Summary {
	leaves := r.h.Leaves()
	summary := Summary{Results: make([]Result, 0, len(leaves))}
	var causes []string
	seen := make(map[string]bool)

	for _, leaf := range leaves {
		p, err := r.Resolve(leaf.Name)
		summary.Results = append(summary.Results, Result{Name: leaf.Name, Priority: p, Err: err})
		if err == nil {
			continue
		}

		var missing *MissingDataError
		if errors.As(err, &missing) {
			for _, cause := range missing.Causes {
				if !seen[cause] {
					seen[cause] = true
					causes = append(causes, cause)
				}
			}
		}
		if errors.Is(err, ErrUnresolvableNode) {
			summary.Unresolvable++
		}
		r.logger.Debug("global priority unavailable", "node", leaf.Name, "error", err)
	}

	for _, name := range r.h.Dangling() {
		err := &MissingDataError{
			Node: name,
			Err:  fmt.Errorf("%w: no node named %q", ErrUnresolvableNode, name),
		}
		summary.Results = append(summary.Results, Result{Name: name, Err: err})
		summary.Unresolvable++
		r.logger.Warn("child references unknown node", "node", name)
	}

	summary.Missing = orderMissing(r.h.Unevaluated(), causes, seen)
	return summary
}

// orderMissing puts causes into hierarchy order. Causes that are evaluated
// but too short for the child's index keep their first-seen order at the end.
func orderMissing(unevaluated, causes []string, seen map[string]bool) []string {
	if len(causes) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(causes))
	placed := make(map[string]bool, len(causes))
	for _, name := range unevaluated {
		if seen[name] {
			ordered = append(ordered, name)
			placed[name] = true
		}
	}
	for _, name := range causes {
		if !placed[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered
}
