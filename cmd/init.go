package cmd

import (
	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pmdoc configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick providers, quality tier, and budgets, and writes a .pmdoc.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
