package commands

import (
	"github.com/systmms/keyvault-middleware/internal/config"
	"github.com/systmms/keyvault-middleware/internal/function"
	"github.com/systmms/keyvault-middleware/internal/keyvault"
	"github.com/systmms/keyvault-middleware/internal/logging"
)

// newSecretGetter builds the Key Vault client. Tests replace it with a fake.
var newSecretGetter = func(cfg *config.Config) (function.SecretGetter, error) {
	cred, err := keyvault.NewCredential(cfg)
	if err != nil {
		return nil, err
	}
	return keyvault.New(cred, keyvault.WithLogger(loggerFor(cfg).Named("keyvault"))), nil
}

func loggerFor(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		cfg.Logger = logging.New(cfg.Debug, cfg.NoColor)
	}
	return cfg.Logger
}
