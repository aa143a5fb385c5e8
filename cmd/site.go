package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Generate a static documentation website",
	Long:  `Renders the project's documents into a self-contained static HTML site with category navigation, or exports them as plain markdown files.`,
	RunE:  runSite,
}

func init() {
	siteCmd.Flags().String("project", "", "project ID or name")
	siteCmd.Flags().String("output", "", "override output directory (defaults to {outputDir}/site)")
	siteCmd.Flags().Bool("markdown", false, "export markdown files instead of HTML")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	projectFlag, _ := cmd.Flags().GetString("project")
	project, err := resolveProject(ctx, store, projectFlag)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = filepath.Join(cfg.OutputDir, "site")
	}

	generator := site.NewGenerator(store, outputDir)

	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		mdDir := filepath.Join(cfg.OutputDir, "markdown")
		count, err := generator.ExportMarkdown(ctx, project.ID, mdDir)
		if err != nil {
			return fmt.Errorf("exporting markdown: %w", err)
		}
		fmt.Printf("Exported %d markdown files to %s\n", count, mdDir)
		return nil
	}

	count, err := generator.Generate(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}
	fmt.Printf("Generated %d pages in %s\n", count, outputDir)
	fmt.Printf("Open %s in a browser to view.\n", filepath.Join(outputDir, "index.html"))
	return nil
}
