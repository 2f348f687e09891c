package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresHierarchyRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresHierarchyRepository(db)

	id := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
		AddRow(id.String(), "Car purchase", createdAt, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM hierarchies WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	record, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if record.ID != id {
		t.Errorf("expected ID %s, got %s", id, record.ID)
	}

	if record.Name != "Car purchase" {
		t.Errorf("expected name %q, got %q", "Car purchase", record.Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresHierarchyRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresHierarchyRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM hierarchies WHERE id").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	record, err := repo.GetByID(context.Background(), id)
	if err != ErrHierarchyNotFound {
		t.Errorf("expected ErrHierarchyNotFound, got %v", err)
	}

	if record != nil {
		t.Error("expected nil record")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresHierarchyRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresHierarchyRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
		AddRow(uuid.New().String(), "Car purchase", now, now).
		AddRow(uuid.New().String(), "Office location", now, now)

	mock.ExpectQuery("SELECT (.+) FROM hierarchies ORDER BY created_at DESC").
		WillReturnRows(rows)

	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[1].Name != "Office location" {
		t.Errorf("unexpected second record %q", records[1].Name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresHierarchyRepository_LoadNodes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresHierarchyRepository(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"name", "description", "children", "local_priorities"}).
		AddRow("Car", "Choose a car", "{Cost,Comfort}", "{0.6,0.4}").
		AddRow("Cost", nil, "{Sedan}", nil).
		AddRow("Comfort", nil, "{}", nil).
		AddRow("Sedan", "four doors", nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM hierarchy_nodes WHERE hierarchy_id").
		WithArgs(id).
		WillReturnRows(rows)

	nodes, err := NewHierarchySource(repo, id).Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}

	root := nodes[0]
	if root.Name != "Car" || root.Description != "Choose a car" {
		t.Errorf("unexpected root %+v", root)
	}
	if len(root.Children) != 2 || root.Children[1] != "Comfort" {
		t.Errorf("unexpected children %v", root.Children)
	}
	if len(root.LocalPriorities) != 2 || root.LocalPriorities[0] != 0.6 {
		t.Errorf("unexpected local priorities %v", root.LocalPriorities)
	}

	if nodes[1].Evaluated() {
		t.Error("expected Cost to be unevaluated")
	}
	if !nodes[3].IsLeaf() {
		t.Error("expected Sedan to be a leaf")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresHierarchyRepository_LoadNodes_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresHierarchyRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM hierarchy_nodes WHERE hierarchy_id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"name", "description", "children", "local_priorities"}))

	_, err = repo.LoadNodes(context.Background(), id)
	if err != ErrHierarchyNotFound {
		t.Errorf("expected ErrHierarchyNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
