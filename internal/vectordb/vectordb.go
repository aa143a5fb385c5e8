package vectordb

import (
	"context"
	"time"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

// Document is one searchable piece of project documentation.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Metadata holds structured information about a stored document.
type Metadata struct {
	ProjectID  string
	DocumentID string
	Type       artifact.Type
	Title      string
	Source     string
	CreatedAt  time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// Store indexes project documents by embedding for semantic search.
type Store interface {
	// AddDocuments adds or updates documents in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search performs a semantic search scoped to one project.
	Search(ctx context.Context, projectID, query string, limit int) ([]SearchResult, error)

	// DeleteByProject removes every document belonging to a project.
	DeleteByProject(ctx context.Context, projectID string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of indexed documents.
	Count() int
}
