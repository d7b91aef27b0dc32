package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/keyvault-middleware/internal/errors"
	"github.com/systmms/keyvault-middleware/internal/logging"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvmiddleware.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := New("", logging.New(false, true)).WithLookupEnv(envMap(nil))
	require.NoError(t, cfg.Load())

	assert.Empty(t, cfg.VaultURL)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.UseManagedIdentity)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.ClientSecret.IsEmpty())
}

func TestConfig_Environment(t *testing.T) {
	t.Parallel()

	cfg := New("", logging.New(false, true)).WithLookupEnv(envMap(map[string]string{
		EnvVaultURL:                "https://my-vault.vault.azure.net/secrets/",
		EnvPort:                    "7071",
		EnvManagedIdentityClientID: "00000000-0000-0000-0000-000000000001",
		EnvRequestTimeout:          "5s",
		EnvDebug:                   "true",
		EnvMetrics:                 "false",
	}))
	require.NoError(t, cfg.Load())

	assert.Equal(t, "https://my-vault.vault.azure.net/secrets/", cfg.VaultURL)
	assert.Equal(t, 7071, cfg.Port)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.ManagedIdentityClientID)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.MetricsEnabled)
}

func TestConfig_BlankVaultURLIsUnset(t *testing.T) {
	t.Parallel()

	cfg := New("", nil).WithLookupEnv(envMap(map[string]string{EnvVaultURL: "   "}))
	require.NoError(t, cfg.Load())
	assert.Empty(t, cfg.VaultURL)
}

func TestConfig_FileThenEnvironment(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `vault_url: https://file-vault.vault.azure.net/secrets/
port: 9000
use_managed_identity: false
tenant_id: tenant
client_id: client
request_timeout: 10s
metrics:
  enabled: false
  path: /internal/metrics
`)

	cfg := New(path, nil).WithLookupEnv(envMap(map[string]string{
		EnvVaultURL: "https://env-vault.vault.azure.net/secrets/",
	}))
	require.NoError(t, cfg.Load())

	assert.Equal(t, "https://env-vault.vault.azure.net/secrets/", cfg.VaultURL, "environment wins over file")
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.UseManagedIdentity)
	assert.Equal(t, "tenant", cfg.TenantID)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "/internal/metrics", cfg.MetricsPath)
}

func TestConfig_ClientSecretIsSealed(t *testing.T) {
	t.Parallel()

	cfg := New("", nil).WithLookupEnv(envMap(map[string]string{
		EnvUseManagedIdentity: "false",
		EnvTenantID:           "tenant",
		EnvClientID:           "client",
		EnvClientSecret:       "sp-secret-value",
	}))
	require.NoError(t, cfg.Load())
	defer cfg.ClientSecret.Destroy()

	var got string
	require.NoError(t, cfg.ClientSecret.Use(func(plain []byte) error {
		got = string(plain)
		return nil
	}))
	assert.Equal(t, "sp-secret-value", got)
	assert.NotContains(t, cfg.Summary(), "sp-secret-value")
	assert.Contains(t, cfg.Summary(), "[REDACTED]")
}

func TestConfig_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		field   string
		wantMsg string
	}{
		{
			name:    "bad debug flag",
			env:     map[string]string{EnvDebug: "verbose"},
			field:   EnvDebug,
			wantMsg: "expected true or false",
		},
		{
			name:    "non numeric port",
			env:     map[string]string{EnvPort: "http"},
			field:   EnvPort,
			wantMsg: "port must be an integer",
		},
		{
			name:    "port out of range",
			env:     map[string]string{EnvPort: "70000"},
			field:   "port",
			wantMsg: "between 1 and 65535",
		},
		{
			name:    "bad timeout",
			env:     map[string]string{EnvRequestTimeout: "soon"},
			field:   EnvRequestTimeout,
			wantMsg: "invalid duration",
		},
		{
			name:    "bad managed identity flag",
			env:     map[string]string{EnvUseManagedIdentity: "maybe"},
			field:   EnvUseManagedIdentity,
			wantMsg: "expected true or false",
		},
		{
			name: "service principal without tenant",
			env: map[string]string{
				EnvUseManagedIdentity: "false",
				EnvClientSecret:       "secret",
			},
			field:   "client_secret",
			wantMsg: "tenant_id and client_id are required",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New("", nil).WithLookupEnv(envMap(tt.env)).Load()
			require.Error(t, err)

			var cfgErr dserrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestConfig_MalformedVaultURLDoesNotBlockStartup(t *testing.T) {
	t.Parallel()

	cfg := New("", nil).WithLookupEnv(envMap(map[string]string{
		EnvVaultURL: "my-vault.vault.azure.net/secrets/",
	}))
	require.NoError(t, cfg.Load())

	assert.Equal(t, "my-vault.vault.azure.net/secrets/", cfg.VaultURL)
	assert.Contains(t, cfg.VaultURLProblem(), "absolute https URL")
}

func TestConfig_VaultURLProblem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vaultURL string
		contains string
	}{
		{name: "unset", vaultURL: ""},
		{name: "secrets collection", vaultURL: "https://v.vault.azure.net/secrets/"},
		{name: "secrets collection without slash", vaultURL: "https://v.vault.azure.net/secrets"},
		{name: "vault root", vaultURL: "https://v.vault.azure.net/"},
		{name: "vault root without slash", vaultURL: "https://v.vault.azure.net"},
		{name: "no scheme", vaultURL: "v.vault.azure.net/secrets/", contains: "absolute https URL"},
		{name: "other scheme", vaultURL: "ftp://v.vault.azure.net/secrets/", contains: "absolute https URL"},
		{name: "keys collection", vaultURL: "https://v.vault.azure.net/keys/", contains: `path "/keys/"`},
		{name: "nested path", vaultURL: "https://v.vault.azure.net/secrets/db/", contains: "is not the vault root"},
		{name: "query", vaultURL: "https://v.vault.azure.net/secrets/?api-version=7.4", contains: "query"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := New("", nil)
			cfg.VaultURL = tt.vaultURL
			problem := cfg.VaultURLProblem()
			if tt.contains == "" {
				assert.Empty(t, problem)
				return
			}
			assert.Contains(t, problem, tt.contains)
		})
	}
}

func TestConfig_FileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		err := New("/nonexistent/kvmiddleware.yaml", nil).WithLookupEnv(envMap(nil)).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration file not found")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "vault_url: [[[\n")
		err := New(path, nil).WithLookupEnv(envMap(nil)).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid YAML syntax")
	})

	t.Run("unknown key rejected by schema", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "vault_url: https://v.vault.azure.net/\nclient_secret: nope\n")
		err := New(path, nil).WithLookupEnv(envMap(nil)).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed validation")
		assert.Contains(t, err.Error(), "client_secret")
	})

	t.Run("wrong type rejected by schema", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "port: eighty\n")
		err := New(path, nil).WithLookupEnv(envMap(nil)).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed validation")
	})

	t.Run("empty file is valid", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "")
		require.NoError(t, New(path, nil).WithLookupEnv(envMap(nil)).Load())
	})
}
