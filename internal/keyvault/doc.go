// Package keyvault fetches secrets from Azure Key Vault by secret identifier.
//
// An identifier is the configured base URL with the secret name appended,
// for example https://my-vault.vault.azure.net/secrets/db-password. The base
// may also be the vault root (https://my-vault.vault.azure.net/) and the name
// may carry a version (db-password/<version>).
package keyvault
