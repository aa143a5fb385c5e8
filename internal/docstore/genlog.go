package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerationEntry records one LLM generation attempt for cost accounting.
type GenerationEntry struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	DocumentType string    `json:"document_type"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMs   int64     `json:"duration_ms"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogGeneration appends an entry to the generation log.
func (s *Store) LogGeneration(ctx context.Context, e GenerationEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_log (id, project_id, document_type, provider, model, input_tokens, output_tokens, cost_usd, duration_ms, success, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.DocumentType, e.Provider, e.Model,
		e.InputTokens, e.OutputTokens, e.CostUSD, e.DurationMs, e.Success, e.Error, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting generation log entry: %w", err)
	}
	return nil
}

// TotalCost sums the recorded cost for a project in USD.
func (s *Store) TotalCost(ctx context.Context, projectID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM generation_log WHERE project_id = ?`, projectID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing generation cost: %w", err)
	}
	return total, nil
}

// ListGenerations returns the generation log for a project, newest first.
func (s *Store) ListGenerations(ctx context.Context, projectID string) ([]GenerationEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, document_type, provider, model, input_tokens, output_tokens, cost_usd, duration_ms, success, COALESCE(error, ''), created_at
		 FROM generation_log WHERE project_id = ? ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying generation log: %w", err)
	}
	defer rows.Close()

	var out []GenerationEntry
	for rows.Next() {
		var e GenerationEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.DocumentType, &e.Provider, &e.Model,
			&e.InputTokens, &e.OutputTokens, &e.CostUSD, &e.DurationMs, &e.Success, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning generation log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
