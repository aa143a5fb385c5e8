package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate [type]",
	Short: "Generate project management documents",
	Long: `Generates PMBOK/BABOK documents for a project. With no argument (or
"all") the full document set is generated in dependency order; with a
type argument (e.g. project-charter, risk-plan) only that document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("project", "", "project ID or name")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()
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

	fm, err := buildManager(cfg, logger)
	if err != nil {
		return err
	}
	budgeter, err := buildBudgeter(cfg, store, logger)
	if err != nil {
		return err
	}
	gen := buildGenerator(cfg, fm, budgeter, store, logger)

	projectFlag, _ := cmd.Flags().GetString("project")
	project, err := resolveProject(ctx, store, projectFlag)
	if err != nil {
		return err
	}

	types := artifact.All()
	if len(args) == 1 && args[0] != "all" {
		t := artifact.Type(args[0])
		if !artifact.Known(t) {
			return fmt.Errorf("unknown document type %q (see `pmdoc generate --help`)", args[0])
		}
		types = []artifact.Type{t}
	}

	reporter := progress.NewReporter()
	reporter.Start(len(types))
	completed := 0
	gen.SetProgressFunc(func(docType artifact.Type, stage string) {
		switch stage {
		case "start":
			reporter.Update(completed, artifact.Title(docType))
		case "done", "failed":
			completed++
			reporter.Update(completed, artifact.Title(docType))
		}
	})

	records, errs := gen.GenerateSet(ctx, project.ID, types)
	reporter.Finish()

	for _, genErr := range errs {
		fmt.Printf("  ✗ %v\n", genErr)
	}
	fmt.Printf("Generated %d/%d documents for %q in %s\n",
		len(records), len(types), project.Name, time.Since(start).Round(time.Second))

	if total, costErr := store.TotalCost(ctx, project.ID); costErr == nil && total > 0 {
		fmt.Printf("Total project spend: $%.4f\n", total)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(errs), len(types))
	}
	return nil
}
