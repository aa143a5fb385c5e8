package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/karimzidan/pmdoc/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing project documents and generation tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		mcpserver.Version = Version
		fmt.Fprintln(os.Stderr, "pmdoc MCP server started on stdio")

		srv := mcpserver.NewServer(store, fm, gen)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
