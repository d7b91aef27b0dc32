package keyvault

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/systmms/keyvault-middleware/internal/logging"
)

// ClientAPI is the subset of *azsecrets.Client used here, so tests can
// substitute a fake.
type ClientAPI interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// ClientFactory builds a ClientAPI for a vault URL
type ClientFactory func(vaultURL string) (ClientAPI, error)

// Client resolves secret identifiers against Azure Key Vault. One
// azsecrets.Client is kept per vault URL.
type Client struct {
	factory ClientFactory
	logger  *logging.Logger

	mu      sync.Mutex
	clients map[string]ClientAPI
}

// Option configures a Client
type Option func(*Client)

// WithClientAPI makes every vault resolve to api (for testing)
func WithClientAPI(api ClientAPI) Option {
	return func(c *Client) {
		c.factory = func(string) (ClientAPI, error) { return api, nil }
	}
}

// WithClientFactory replaces the azsecrets client constructor
func WithClientFactory(f ClientFactory) Option {
	return func(c *Client) {
		c.factory = f
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client authenticating with cred. cred may be nil when a
// ClientAPI or factory is supplied through options.
func New(cred azcore.TokenCredential, opts ...Option) *Client {
	c := &Client{
		logger:  logging.New(false, true),
		clients: make(map[string]ClientAPI),
	}
	c.factory = func(vaultURL string) (ClientAPI, error) {
		if cred == nil {
			return nil, fmt.Errorf("no Azure credential configured")
		}
		return azsecrets.NewClient(vaultURL, cred, nil)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSecret fetches the current (or the identified) version of a secret
// and returns its value.
func (c *Client) GetSecret(ctx context.Context, identifier string) (string, error) {
	id, err := ParseSecretID(identifier)
	if err != nil {
		return "", err
	}

	api, err := c.clientFor(id.VaultURL)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Fetching secret %s from %s", id.Name, id.VaultURL)

	resp, err := api.GetSecret(ctx, id.Name, id.Version, nil)
	if err != nil {
		return "", err
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret %s has no value", id.Name)
	}
	return *resp.Value, nil
}

func (c *Client) clientFor(vaultURL string) (ClientAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.clients[vaultURL]; ok {
		return api, nil
	}

	api, err := c.factory(vaultURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}
	c.clients[vaultURL] = api
	return api, nil
}
