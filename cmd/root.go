package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pmdoc",
	Short: "AI-assisted project management document generation",
	Long: `pmdoc generates PMBOK and BABOK project artifacts — charters, plans,
registers — with an LLM provider fallback chain and token-budgeted
context so later documents stay consistent with earlier ones.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// API keys are commonly kept in a local .env file.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
