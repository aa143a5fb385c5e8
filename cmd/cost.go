package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Show accumulated generation spend for a project",
	Long:  `Prints the generation log with per-document token counts and cost, plus the project total against the configured ceiling.`,
	RunE:  runCost,
}

func init() {
	costCmd.Flags().String("project", "", "project ID or name")
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
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

	entries, err := store.ListGenerations(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("reading generation log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No generations logged for %q yet.\n", project.Name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tDOCUMENT\tPROVIDER\tMODEL\tTOKENS IN/OUT\tCOST\tOK")
	for _, e := range entries {
		ok := "yes"
		if !e.Success {
			ok = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t$%.4f\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.DocumentType, e.Provider,
			e.Model, e.InputTokens, e.OutputTokens, e.CostUSD, ok)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total, err := store.TotalCost(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("computing total cost: %w", err)
	}
	fmt.Printf("\nTotal: $%.4f", total)
	if cfg.MaxCostUSD > 0 {
		fmt.Printf(" of $%.2f ceiling", cfg.MaxCostUSD)
	}
	fmt.Println()
	return nil
}
