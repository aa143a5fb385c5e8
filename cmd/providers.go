package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/fallback"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show provider health and fallback order",
	Long:  `Probes every configured LLM provider once and prints the fallback chain with health state, latency, and failure counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		fm, err := buildManager(cfg, logger)
		if err != nil {
			return err
		}

		noProbe, _ := cmd.Flags().GetBool("no-probe")
		if !noProbe {
			monitor := fallback.NewMonitor(fm, cfg.Fallback.HealthInterval(), cfg.Fallback.ProbeTimeout())
			monitor.ProbeAll(context.Background())
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tSTATE\tCONFIGURED\tFAILURES\tAVG MS\tLAST ERROR")
		for _, st := range fm.Status() {
			name := st.Name
			if st.Active {
				name = "* " + name
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\t%s\n",
				name, st.State, st.Configured, st.ConsecutiveFailures, st.AvgResponseMs, st.LastError)
		}
		return w.Flush()
	},
}

func init() {
	providersCmd.Flags().Bool("no-probe", false, "show state without pinging providers")
	rootCmd.AddCommand(providersCmd)
}
