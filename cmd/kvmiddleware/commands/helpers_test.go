package commands

import (
	"testing"

	"github.com/systmms/keyvault-middleware/internal/config"
	"github.com/systmms/keyvault-middleware/internal/function"
	"github.com/systmms/keyvault-middleware/internal/keyvault"
	"github.com/systmms/keyvault-middleware/tests/fakes"
	"github.com/systmms/keyvault-middleware/tests/testutil"
)

// useFakeVault swaps newSecretGetter for a fake-backed client for the
// duration of the test. Tests using it cannot run in parallel.
func useFakeVault(t *testing.T) *fakes.FakeAzureKeyVaultClient {
	t.Helper()

	fake := fakes.NewFakeAzureKeyVaultClient()
	orig := newSecretGetter
	newSecretGetter = func(*config.Config) (function.SecretGetter, error) {
		return keyvault.New(nil, keyvault.WithClientAPI(fake)), nil
	}
	t.Cleanup(func() { newSecretGetter = orig })
	return fake
}

func testConfig(t *testing.T, vaultURL string) *config.Config {
	t.Helper()

	cfg := config.New("", testutil.NewTestLogger(t, true).Logger)
	cfg.VaultURL = vaultURL
	return cfg
}
