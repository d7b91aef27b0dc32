package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/systmms/keyvault-middleware/internal/config"
	dserrors "github.com/systmms/keyvault-middleware/internal/errors"
	"github.com/systmms/keyvault-middleware/internal/function"
)

// NewGetCommand fetches one secret through the same path as the HTTP function
func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		key   string
		value bool
	)

	cmd := &cobra.Command{
		Use:           "get",
		Short:         "Fetch a secret the way GetSecret would",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Run the GetSecret function once, in-process, and print its JSON response.

Useful for checking the managed identity and AZURE_KEYVAULT_URL from a
Kudu console or locally with 'az login'.

Examples:
  # Print the JSON envelope
  kvmiddleware get --key db-password

  # Print only the secret value, for scripts
  export DB_PASSWORD=$(kvmiddleware get --key db-password --value)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secrets, err := newSecretGetter(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			resp := function.NewHandler(cfg, secrets).Handle(ctx, key)
			out := cmd.OutOrStdout()

			if resp.Status == http.StatusOK && value {
				fmt.Fprint(out, resp.Body.(function.SecretResponse).Secret)
				return nil
			}

			body, err := function.Format(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			fmt.Fprintln(out, string(body))

			if resp.Status != http.StatusOK {
				return dserrors.UserError{
					Message: fmt.Sprintf("GetSecret returned %d %s", resp.Status, http.StatusText(resp.Status)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Secret name (required)")
	cmd.Flags().BoolVar(&value, "value", false, "Print only the secret value")

	_ = cmd.MarkFlagRequired("key")

	return cmd
}
