package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/todmy/ahp/internal/hierarchy"
)

var ErrHierarchyNotFound = errors.New("hierarchy not found")

// HierarchyRecord describes a stored hierarchy definition
type HierarchyRecord struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HierarchyRepository defines read access to stored hierarchy definitions
type HierarchyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*HierarchyRecord, error)
	List(ctx context.Context) ([]*HierarchyRecord, error)
	LoadNodes(ctx context.Context, id uuid.UUID) ([]hierarchy.Node, error)
}

// PostgresHierarchyRepository implements HierarchyRepository using PostgreSQL
type PostgresHierarchyRepository struct {
	db *sql.DB
}

// NewPostgresHierarchyRepository creates a new PostgresHierarchyRepository
func NewPostgresHierarchyRepository(db *sql.DB) *PostgresHierarchyRepository {
	return &PostgresHierarchyRepository{db: db}
}

// GetByID retrieves a hierarchy definition by its ID
func (r *PostgresHierarchyRepository) GetByID(ctx context.Context, id uuid.UUID) (*HierarchyRecord, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM hierarchies
		WHERE id = $1
	`

	record := &HierarchyRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Name,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrHierarchyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hierarchy: %w", err)
	}

	return record, nil
}

// List retrieves all hierarchy definitions, newest first
func (r *PostgresHierarchyRepository) List(ctx context.Context) ([]*HierarchyRecord, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM hierarchies
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hierarchies: %w", err)
	}
	defer rows.Close()

	var records []*HierarchyRecord
	for rows.Next() {
		record := &HierarchyRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// LoadNodes retrieves the nodes of a hierarchy in their stored order, root
// first
func (r *PostgresHierarchyRepository) LoadNodes(ctx context.Context, id uuid.UUID) ([]hierarchy.Node, error) {
	query := `
		SELECT name, description, children, local_priorities
		FROM hierarchy_nodes
		WHERE hierarchy_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy nodes: %w", err)
	}
	defer rows.Close()

	var nodes []hierarchy.Node
	for rows.Next() {
		var (
			node        hierarchy.Node
			description sql.NullString
		)
		err := rows.Scan(
			&node.Name,
			&description,
			pq.Array(&node.Children),
			pq.Array(&node.LocalPriorities),
		)
		if err != nil {
			return nil, err
		}
		node.Description = description.String
		nodes = append(nodes, node)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, ErrHierarchyNotFound
	}

	return nodes, nil
}

// NewHierarchySource adapts one stored hierarchy to the source.Source
// interface
func NewHierarchySource(repo HierarchyRepository, id uuid.UUID) *HierarchySource {
	return &HierarchySource{repo: repo, id: id}
}

// HierarchySource loads a single stored hierarchy
type HierarchySource struct {
	repo HierarchyRepository
	id   uuid.UUID
}

func (s *HierarchySource) Load(ctx context.Context) ([]hierarchy.Node, error) {
	return s.repo.LoadNodes(ctx, s.id)
}
