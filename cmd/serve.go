package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API with project, document, and generation endpoints,
plus a websocket feed of provider fallback events. The health monitor
probes providers in the background while the server runs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	search, err := buildSearchStore(ctx, cfg, logger)
	if err != nil {
		// Search is optional; the server serves 503 on /search without it.
		logger.Warn("semantic search disabled", "err", err)
		search = nil
	}

	port := cfg.Server.Port
	if override, _ := cmd.Flags().GetInt("port"); override > 0 {
		port = override
	}

	srv := server.New(server.Config{Port: port, AllowAll: cfg.Server.AllowAll},
		store, fm, budgeter, gen, search, logger)

	monitor := fallback.NewMonitor(fm, cfg.Fallback.HealthInterval(), cfg.Fallback.ProbeTimeout())
	go monitor.Run(ctx)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitOnError(fmt.Errorf("server: %w", err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
