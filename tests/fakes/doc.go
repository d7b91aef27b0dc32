// Package fakes provides test doubles for the Azure SDK clients used by
// the function.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeAzureKeyVaultClient()
//	fake.AddSecretString("db-password", "s3cr3t")
//	fake.AddError("locked", fakes.ForbiddenError())
//	client := keyvault.New(nil, keyvault.WithClientAPI(fake))
package fakes
