package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/keyvault-middleware/tests/fakes"
)

func executeGet(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGetCommand_JSONOutput(t *testing.T) {
	fake := useFakeVault(t)
	fake.AddSecretString("db-password", "s3cr3t")

	cmd := NewGetCommand(testConfig(t, fakes.FakeVaultURL + "secrets/"))
	output, err := executeGet(t, cmd, []string{"--key", "db-password"})

	require.NoError(t, err)
	assert.Equal(t, "{\"key\":\"db-password\",\"secret\":\"s3cr3t\"}\n", output)
}

func TestGetCommand_ValueOutput(t *testing.T) {
	fake := useFakeVault(t)
	fake.AddSecretString("db-password", "s3cr3t")

	cmd := NewGetCommand(testConfig(t, fakes.FakeVaultURL + "secrets/"))
	output, err := executeGet(t, cmd, []string{"--key", "db-password", "--value"})

	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", output)
}

func TestGetCommand_ErrorEnvelope(t *testing.T) {
	useFakeVault(t)

	cmd := NewGetCommand(testConfig(t, fakes.FakeVaultURL + "secrets/"))
	output, err := executeGet(t, cmd, []string{"--key", "missing", "--value"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.JSONEq(t, `{"error":"Not found","message":"missing not found in the Azure Key Vault"}`, output)
}

func TestGetCommand_NotConfigured(t *testing.T) {
	useFakeVault(t)

	cmd := NewGetCommand(testConfig(t, ""))
	output, err := executeGet(t, cmd, []string{"--key", "db-password"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "424")
	assert.Contains(t, output, "Not configured properly")
}

func TestGetCommand_MissingFlag(t *testing.T) {
	useFakeVault(t)

	cmd := NewGetCommand(testConfig(t, fakes.FakeVaultURL))
	_, err := executeGet(t, cmd, []string{})

	assert.Error(t, err)
}
