// Package docstore persists projects, generated documents, categories, and
// the generation audit log. It backs the context budgeter's document source.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/contextbudget"
	"github.com/karimzidan/pmdoc/internal/db"
)

// ErrNotFound is returned for lookups of missing rows.
var ErrNotFound = errors.New("not found")

// Store manages persistence of pmdoc entities.
type Store struct {
	db *db.DB
}

// New creates a store over the given database.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// Project is a documentation project: the unit a set of artifacts belongs to.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record is one stored document with its generation provenance.
type Record struct {
	ID            string            `json:"id"`
	ProjectID     string            `json:"project_id"`
	Type          artifact.Type     `json:"type"`
	Category      artifact.Category `json:"category"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	TokenEstimate int               `json:"token_estimate"`
	Quality       float64           `json:"quality"`
	Source        string            `json:"source"`
	Model         string            `json:"model,omitempty"`
	Provider      string            `json:"provider,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Context converts the record into the budgeter's document shape.
func (r Record) Context() contextbudget.Document {
	return contextbudget.Document{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		Type:          r.Type,
		Category:      r.Category,
		Content:       r.Content,
		TokenEstimate: r.TokenEstimate,
		Priority:      artifact.PriorityOf(r.Type),
		Quality:       r.Quality,
		GeneratedAt:   r.CreatedAt,
	}
}

// CreateProject inserts a new project.
func (s *Store) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	p := &Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveDocument inserts a document record. Missing fields are derived from
// the artifact catalog.
func (s *Store) SaveDocument(ctx context.Context, r Record) (*Record, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Category == "" {
		r.Category = artifact.CategoryOf(r.Type)
	}
	if r.Title == "" {
		r.Title = artifact.Title(r.Type)
	}
	if r.Source == "" {
		r.Source = "generated"
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, type, category, title, content, token_estimate, quality, source, model, provider, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.Type, r.Category, r.Title, r.Content,
		r.TokenEstimate, r.Quality, r.Source, r.Model, r.Provider, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET updated_at = ? WHERE id = ?`, r.CreatedAt, r.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("touching project: %w", err)
	}
	return &r, nil
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, type, category, title, content, token_estimate, quality, source, model, provider, created_at
		 FROM documents WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ListDocuments returns all document records for a project, oldest first.
func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, type, category, title, content, token_estimate, quality, source, model, provider, created_at
		 FROM documents WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.ProjectID, &r.Type, &r.Category, &r.Title, &r.Content,
		&r.TokenEstimate, &r.Quality, &r.Source, &r.Model, &r.Provider, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Documents implements contextbudget.Source: every stored document for the
// project in the budgeter's shape.
func (s *Store) Documents(ctx context.Context, projectID string) ([]contextbudget.Document, error) {
	records, err := s.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]contextbudget.Document, 0, len(records))
	for _, r := range records {
		out = append(out, r.Context())
	}
	return out, nil
}
