package fakes

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// FakeVaultURL is the vault every fake secret ID points at
const FakeVaultURL = "https://test-vault.vault.azure.net/"

// FakeAzureKeyVaultClient is an in-memory stand-in for *azsecrets.Client
type FakeAzureKeyVaultClient struct {
	mu sync.Mutex
	// Secrets maps secret name to version to value. Version "" is the latest.
	Secrets map[string]map[string]*string
	// Errors maps secret names to errors to return
	Errors map[string]error
	// GetSecretFunc overrides all other behavior when set
	GetSecretFunc func(ctx context.Context, name string, version string) (azsecrets.GetSecretResponse, error)
	// Calls records every (name, version) requested
	Calls []Call
}

// Call is one recorded GetSecret invocation
type Call struct {
	Name    string
	Version string
}

// NewFakeAzureKeyVaultClient creates an empty fake
func NewFakeAzureKeyVaultClient() *FakeAzureKeyVaultClient {
	return &FakeAzureKeyVaultClient{
		Secrets: make(map[string]map[string]*string),
		Errors:  make(map[string]error),
	}
}

// AddSecretString stores value as the latest version of name
func (f *FakeAzureKeyVaultClient) AddSecretString(name, value string) {
	f.AddSecretVersion(name, "", value)
}

// AddSecretVersion stores value under a specific version
func (f *FakeAzureKeyVaultClient) AddSecretVersion(name, version, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Secrets[name] == nil {
		f.Secrets[name] = make(map[string]*string)
	}
	f.Secrets[name][version] = to.Ptr(value)
}

// AddSecretWithoutValue stores a secret whose Value is nil
func (f *FakeAzureKeyVaultClient) AddSecretWithoutValue(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Secrets[name] = map[string]*string{"": nil}
}

// AddError configures the fake to fail for a specific secret
func (f *FakeAzureKeyVaultClient) AddError(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Errors[name] = err
}

// CallCount returns how many times GetSecret was called
func (f *FakeAzureKeyVaultClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Calls)
}

// GetSecret mocks the GetSecret operation
func (f *FakeAzureKeyVaultClient) GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Version: version})
	fn := f.GetSecretFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, name, version)
	}
	if err := ctx.Err(); err != nil {
		return azsecrets.GetSecretResponse{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, exists := f.Errors[name]; exists {
		return azsecrets.GetSecretResponse{}, err
	}

	versions, exists := f.Secrets[name]
	if !exists {
		return azsecrets.GetSecretResponse{}, NotFoundError()
	}
	value, exists := versions[version]
	if !exists {
		return azsecrets.GetSecretResponse{}, NotFoundError()
	}

	now := time.Now()
	id := fmt.Sprintf("%ssecrets/%s", FakeVaultURL, name)
	if version != "" {
		id += "/" + version
	}
	return azsecrets.GetSecretResponse{
		Secret: azsecrets.Secret{
			ID:    (*azsecrets.ID)(to.Ptr(id)),
			Value: value,
			Attributes: &azsecrets.SecretAttributes{
				Enabled: to.Ptr(true),
				Created: &now,
				Updated: &now,
			},
		},
	}, nil
}

// NotFoundError is the error Key Vault returns for an unknown secret
func NotFoundError() error {
	return &azcore.ResponseError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "SecretNotFound",
	}
}

// ForbiddenError is the error Key Vault returns when the identity lacks
// the Get permission
func ForbiddenError() error {
	return &azcore.ResponseError{
		StatusCode: http.StatusForbidden,
		ErrorCode:  "Forbidden",
	}
}
