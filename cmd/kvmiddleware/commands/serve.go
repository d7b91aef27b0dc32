package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/systmms/keyvault-middleware/internal/config"
	"github.com/systmms/keyvault-middleware/internal/function"
	"github.com/systmms/keyvault-middleware/internal/keyvault"
	"github.com/systmms/keyvault-middleware/internal/metrics"
	"github.com/systmms/keyvault-middleware/internal/server"
)

// NewServeCommand runs the custom handler HTTP server
func NewServeCommand(cfg *config.Config) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GetSecret function",
		Long: `Start the HTTP server the Azure Functions host forwards GetSecret requests to.

The listen port comes from FUNCTIONS_CUSTOMHANDLER_PORT (set by the host),
falling back to 8080. Routes:

  GET|POST /api/GetSecret?key=<name>   fetch a secret
  GET      /healthz                    liveness
  GET      /metrics                    Prometheus metrics (unless KVM_METRICS=false)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (overrides FUNCTIONS_CUSTOMHANDLER_PORT)")

	return cmd
}

func buildServer(cfg *config.Config) (*server.Server, error) {
	logger := loggerFor(cfg)

	secrets, err := newSecretGetter(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.VaultURL == "" {
		logger.Warn("%s is not set; GetSecret will answer 424 until it is configured", config.EnvVaultURL)
	} else if problem := cfg.VaultURLProblem(); problem != "" {
		logger.Warn("%s=%q is invalid (%s); GetSecret will answer 500 until it is fixed", config.EnvVaultURL, cfg.VaultURL, problem)
	}
	logger.Info("Authenticating to Key Vault with %s", keyvault.CredentialKind(cfg))
	logger.Debug("Configuration: %s", cfg.Summary())

	var opts []function.Option
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, function.WithMetrics(m))
	}

	srvConfig := server.DefaultConfig()
	srvConfig.Addr = cfg.Addr()
	if w := cfg.RequestTimeout + srvConfig.ReadTimeout; w > srvConfig.WriteTimeout {
		srvConfig.WriteTimeout = w
	}

	srv := server.New(srvConfig, logger)
	srv.Handle(function.Route, function.NewHandler(cfg, secrets, opts...))
	if m != nil {
		srv.Handle("GET "+cfg.MetricsPath, m.Handler())
	}
	return srv, nil
}

// runServer serves until ctx is cancelled
func runServer(ctx context.Context, cfg *config.Config) error {
	srv, err := buildServer(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
