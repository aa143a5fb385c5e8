package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/vectordb"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the semantic search index for a project",
	Long: `Embeds every stored document and writes the vector index under the
data directory. Requires an embeddings provider in the config; the
serve command picks the index up automatically.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("project", "", "project ID or name")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Embeddings.Provider == "" {
		return fmt.Errorf("no embeddings provider configured; set embeddings.provider to openai or ollama")
	}
	logger := newLogger()

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	search, err := buildSearchStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	projectFlag, _ := cmd.Flags().GetString("project")
	project, err := resolveProject(ctx, store, projectFlag)
	if err != nil {
		return err
	}

	records, err := store.ListDocuments(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(records) == 0 {
		fmt.Printf("Project %q has no documents to index yet.\n", project.Name)
		return nil
	}

	// Reindex from scratch so removed documents drop out.
	if err := search.DeleteByProject(ctx, project.ID); err != nil {
		return fmt.Errorf("clearing old index entries: %w", err)
	}

	docs := make([]vectordb.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, vectordb.Document{
			ID:      r.ID,
			Content: r.Title + "\n\n" + r.Content,
			Metadata: vectordb.Metadata{
				ProjectID:  r.ProjectID,
				DocumentID: r.ID,
				Type:       r.Type,
				Title:      r.Title,
				Source:     r.Source,
				CreatedAt:  r.CreatedAt,
			},
		})
	}
	if err := search.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := search.Persist(ctx, vectorDir); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Printf("Indexed %d documents for %q (%s)\n", len(docs), project.Name, vectorDir)
	return nil
}
