package keyvault

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/systmms/keyvault-middleware/internal/config"
)

// NewCredential picks the token credential the Function App authenticates with:
// managed identity (system or user-assigned) by default, a service principal
// when managed identity is disabled and a client secret is present, and the
// default credential chain otherwise (useful when running locally).
func NewCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	var cred azcore.TokenCredential
	var err error

	switch {
	case cfg.UseManagedIdentity:
		var opts *azidentity.ManagedIdentityCredentialOptions
		if cfg.ManagedIdentityClientID != "" {
			opts = &azidentity.ManagedIdentityCredentialOptions{
				ID: azidentity.ClientID(cfg.ManagedIdentityClientID),
			}
		}
		cred, err = azidentity.NewManagedIdentityCredential(opts)

	case cfg.ClientSecret != nil && !cfg.ClientSecret.IsEmpty():
		if cfg.TenantID == "" || cfg.ClientID == "" {
			return nil, fmt.Errorf("tenant_id and client_id are required for service principal authentication")
		}
		err = cfg.ClientSecret.Use(func(secret []byte) error {
			var spErr error
			// The credential keeps the secret for token refreshes; string() copies it.
			cred, spErr = azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, string(secret), nil)
			return spErr
		})

	default:
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return cred, nil
}

// CredentialKind names the credential NewCredential selects, for start-up logs.
func CredentialKind(cfg *config.Config) string {
	switch {
	case cfg.UseManagedIdentity && cfg.ManagedIdentityClientID != "":
		return "user-assigned managed identity"
	case cfg.UseManagedIdentity:
		return "system-assigned managed identity"
	case cfg.ClientSecret != nil && !cfg.ClientSecret.IsEmpty():
		return "service principal"
	default:
		return "default credential chain"
	}
}
