package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	dserrors "github.com/systmms/keyvault-middleware/internal/errors"
	"github.com/systmms/keyvault-middleware/internal/logging"
	"github.com/systmms/keyvault-middleware/internal/secure"
	"gopkg.in/yaml.v3"
)

// Environment variables read at start-up. AZURE_KEYVAULT_URL and
// FUNCTIONS_CUSTOMHANDLER_PORT are set by the Function App's application
// settings and the Functions host respectively.
const (
	EnvVaultURL                = "AZURE_KEYVAULT_URL"
	EnvPort                    = "FUNCTIONS_CUSTOMHANDLER_PORT"
	EnvUseManagedIdentity      = "AZURE_KEYVAULT_USE_MANAGED_IDENTITY"
	EnvManagedIdentityClientID = "AZURE_KEYVAULT_MI_CLIENT_ID"
	EnvTenantID                = "AZURE_TENANT_ID"
	EnvClientID                = "AZURE_CLIENT_ID"
	EnvClientSecret            = "AZURE_CLIENT_SECRET"
	EnvRequestTimeout          = "KVM_REQUEST_TIMEOUT"
	EnvDebug                   = "KVM_DEBUG"
	EnvMetrics                 = "KVM_METRICS"
)

const (
	DefaultPort           = 8080
	DefaultRequestTimeout = 30 * time.Second
	DefaultMetricsPath    = "/metrics"
)

// Config holds the runtime configuration
type Config struct {
	// Path is an optional YAML file. Environment variables override it.
	Path   string
	Logger *logging.Logger

	// VaultURL is the base the secret name is appended to. It may be empty:
	// the handler reports that per request instead of refusing to start.
	VaultURL string
	Port     int

	UseManagedIdentity      bool
	ManagedIdentityClientID string
	TenantID                string
	ClientID                string
	ClientSecret            *secure.SecureString

	RequestTimeout time.Duration
	Debug          bool
	NoColor        bool

	MetricsEnabled bool
	MetricsPath    string

	lookupEnv func(string) (string, bool)
}

// File is the on-disk YAML layout
type File struct {
	VaultURL                string `yaml:"vault_url,omitempty"`
	Port                    int    `yaml:"port,omitempty"`
	UseManagedIdentity      *bool  `yaml:"use_managed_identity,omitempty"`
	ManagedIdentityClientID string `yaml:"managed_identity_client_id,omitempty"`
	TenantID                string `yaml:"tenant_id,omitempty"`
	ClientID                string `yaml:"client_id,omitempty"`
	RequestTimeout          string `yaml:"request_timeout,omitempty"`
	Debug                   bool   `yaml:"debug,omitempty"`
	Metrics                 *struct {
		Enabled *bool  `yaml:"enabled,omitempty"`
		Path    string `yaml:"path,omitempty"`
	} `yaml:"metrics,omitempty"`
}

// New returns a Config populated with defaults
func New(path string, logger *logging.Logger) *Config {
	return &Config{
		Path:               path,
		Logger:             logger,
		Port:               DefaultPort,
		UseManagedIdentity: true,
		ClientSecret:       secure.NewSecureString(""),
		RequestTimeout:     DefaultRequestTimeout,
		MetricsEnabled:     true,
		MetricsPath:        DefaultMetricsPath,
	}
}

// WithLookupEnv replaces os.LookupEnv, mainly for tests
func (c *Config) WithLookupEnv(fn func(string) (string, bool)) *Config {
	c.lookupEnv = fn
	return c
}

// Load reads the optional YAML file, then overlays the environment, then validates.
func (c *Config) Load() error {
	if c.Path != "" {
		if err := c.loadFile(); err != nil {
			return err
		}
	}
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Remove --config to configure through application settings only",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
		}
	}
	if err := validateSchema(raw); err != nil {
		return err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return dserrors.ConfigError{
			Message:    "configuration file does not match the expected layout",
			Suggestion: err.Error(),
		}
	}
	return c.apply(f)
}

func (c *Config) apply(f File) error {
	if f.VaultURL != "" {
		c.VaultURL = f.VaultURL
	}
	if f.Port != 0 {
		c.Port = f.Port
	}
	if f.UseManagedIdentity != nil {
		c.UseManagedIdentity = *f.UseManagedIdentity
	}
	if f.ManagedIdentityClientID != "" {
		c.ManagedIdentityClientID = f.ManagedIdentityClientID
	}
	if f.TenantID != "" {
		c.TenantID = f.TenantID
	}
	if f.ClientID != "" {
		c.ClientID = f.ClientID
	}
	if f.RequestTimeout != "" {
		d, err := time.ParseDuration(f.RequestTimeout)
		if err != nil {
			return dserrors.ConfigError{
				Field:      "request_timeout",
				Value:      f.RequestTimeout,
				Message:    "invalid duration",
				Suggestion: "Use a Go duration such as 30s or 1m",
			}
		}
		c.RequestTimeout = d
	}
	if f.Debug {
		c.Debug = true
	}
	if f.Metrics != nil {
		if f.Metrics.Enabled != nil {
			c.MetricsEnabled = *f.Metrics.Enabled
		}
		if f.Metrics.Path != "" {
			c.MetricsPath = f.Metrics.Path
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	lookup := c.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvVaultURL); ok {
		c.VaultURL = v
	}
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return dserrors.ConfigError{Field: EnvPort, Value: v, Message: "port must be an integer"}
		}
		c.Port = port
	}
	if v, ok := get(EnvUseManagedIdentity); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return dserrors.ConfigError{Field: EnvUseManagedIdentity, Value: v, Message: "expected true or false"}
		}
		c.UseManagedIdentity = b
	}
	if v, ok := get(EnvManagedIdentityClientID); ok {
		c.ManagedIdentityClientID = v
	}
	if v, ok := get(EnvTenantID); ok {
		c.TenantID = v
	}
	if v, ok := get(EnvClientID); ok {
		c.ClientID = v
	}
	if v, ok := get(EnvClientSecret); ok {
		if c.ClientSecret != nil {
			c.ClientSecret.Destroy()
		}
		c.ClientSecret = secure.NewSecureString(v)
	}
	if v, ok := get(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return dserrors.ConfigError{Field: EnvRequestTimeout, Value: v, Message: "invalid duration"}
		}
		c.RequestTimeout = d
	}
	if v, ok := get(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return dserrors.ConfigError{Field: EnvDebug, Value: v, Message: "expected true or false"}
		}
		c.Debug = c.Debug || b
	}
	if v, ok := get(EnvMetrics); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return dserrors.ConfigError{Field: EnvMetrics, Value: v, Message: "expected true or false"}
		}
		c.MetricsEnabled = b
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return dserrors.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be between 1 and 65535",
		}
	}
	if c.RequestTimeout <= 0 {
		return dserrors.ConfigError{
			Field:   "request_timeout",
			Value:   c.RequestTimeout,
			Message: "request timeout must be positive",
		}
	}
	if !c.UseManagedIdentity && c.ClientSecret != nil && !c.ClientSecret.IsEmpty() {
		if c.TenantID == "" || c.ClientID == "" {
			return dserrors.ConfigError{
				Field:      "client_secret",
				Message:    "tenant_id and client_id are required for service principal authentication",
				Suggestion: fmt.Sprintf("Set %s and %s", EnvTenantID, EnvClientID),
			}
		}
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return dserrors.ConfigError{
			Field:   "metrics.path",
			Value:   c.MetricsPath,
			Message: "metrics path must start with '/'",
		}
	}
	return nil
}

// VaultURLProblem reports why VaultURL cannot be used to build secret
// identifiers, or "" when it is usable or unset. A bad URL does not stop the
// process from starting: requests fail with a 500 until it is fixed.
func (c *Config) VaultURLProblem() string {
	if c.VaultURL == "" {
		return ""
	}
	u, err := url.Parse(c.VaultURL)
	if err != nil {
		return err.Error()
	}
	if u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return "expected an absolute https URL such as https://my-vault.vault.azure.net/secrets/"
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "query and fragment are not allowed"
	}
	switch u.Path {
	case "", "/", "/secrets", "/secrets/":
		return ""
	default:
		return fmt.Sprintf("path %q is not the vault root or its /secrets/ collection", u.Path)
	}
}

// Addr is the listen address for the custom handler
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Summary renders the non-sensitive settings for `kvmiddleware serve --debug`.
func (c *Config) Summary() string {
	summary := map[string]interface{}{
		"vault_url":            c.VaultURL,
		"port":                 c.Port,
		"use_managed_identity": c.UseManagedIdentity,
		"request_timeout":      c.RequestTimeout.String(),
		"metrics_enabled":      c.MetricsEnabled,
		"metrics_path":         c.MetricsPath,
	}
	if c.ManagedIdentityClientID != "" {
		summary["managed_identity_client_id"] = c.ManagedIdentityClientID
	}
	if c.ClientSecret != nil && !c.ClientSecret.IsEmpty() {
		summary["client_secret"] = c.ClientSecret.String()
	}
	out, _ := json.Marshal(summary)
	return string(out)
}
