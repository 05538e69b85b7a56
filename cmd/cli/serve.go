package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/internal/server"
	"github.com/turtacn/riskboard/pkg/logger"
)

// NewServeCommand builds the command that runs the dashboard API until SIGINT or SIGTERM.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the risk dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := monitoring.NewZapLogger(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			srv, err := server.New(ctx, cfg, log, server.Options{Registry: reg})
			if err != nil {
				log.Error(context.Background(), "Failed to initialize server", err)
				return err
			}
			log.Info(ctx, "Risk dashboard starting", logger.Fields{
				"address":  cfg.Server.Address(),
				"data_dir": cfg.Data.Dir,
				"redis":    cfg.Redis.Enabled,
			})
			return srv.Run(ctx)
		},
	}
}

// AddConfigFlags registers the global flags on a standalone command.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default searches /etc/riskboard and .)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")
}
