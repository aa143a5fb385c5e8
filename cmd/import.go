package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/importers"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import existing markdown documents into a project",
	Long: `Walks a directory of markdown files, classifies each one against the
known document types, and stores them so generation can reference
them. Unclassified files are kept under free-form imported types.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("project", "", "project ID or name")
	importCmd.Flags().StringSlice("include", nil, "glob patterns to include (overrides config)")
	importCmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude (overrides config)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	budgeter, err := buildBudgeter(cfg, store, logger)
	if err != nil {
		return err
	}

	projectFlag, _ := cmd.Flags().GetString("project")
	project, err := resolveProject(ctx, store, projectFlag)
	if err != nil {
		return err
	}

	include := cfg.Import.Include
	exclude := cfg.Import.Exclude
	if flagInclude, _ := cmd.Flags().GetStringSlice("include"); len(flagInclude) > 0 {
		include = flagInclude
	}
	if flagExclude, _ := cmd.Flags().GetStringSlice("exclude"); len(flagExclude) > 0 {
		exclude = flagExclude
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	importer := importers.New(store, budgeter, importers.Options{
		Include: include,
		Exclude: exclude,
		Logger:  logger,
	})
	result, err := importer.ImportDirectory(ctx, project.ID, dir)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}

	for _, fileErr := range result.Errors {
		fmt.Printf("  ✗ %s\n", fileErr)
	}
	fmt.Printf("Imported %d/%d markdown files into %q\n",
		result.FilesImported, result.FilesFound, project.Name)
	return nil
}
