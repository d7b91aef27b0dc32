package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/keyvault-middleware/cmd/kvmiddleware/commands"
	"github.com/systmms/keyvault-middleware/internal/config"
	"github.com/systmms/keyvault-middleware/internal/logging"
	"github.com/systmms/keyvault-middleware/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	secure.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := config.New("", nil)

	rootCmd := &cobra.Command{
		Use:   "kvmiddleware",
		Short: "Azure Functions custom handler that serves Key Vault secrets over HTTP",
		Long: `kvmiddleware implements the GetSecret function: it reads the secret named by
the 'key' query parameter from the Azure Key Vault at AZURE_KEYVAULT_URL,
authenticating with the Function App's managed identity, and returns it as JSON.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Path = configFile
			if err := cfg.Load(); err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}
			cfg.NoColor = noColor
			cfg.Logger = logging.New(cfg.Debug, cfg.NoColor)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional YAML config file (application settings take precedence)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewServeCommand(cfg),
		commands.NewGetCommand(cfg),
	)

	// The Functions host starts the custom handler without arguments.
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}

	return rootCmd.Execute()
}
