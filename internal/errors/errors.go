package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// UserError represents an error that should be shown to the operator with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  " + e.Suggestion
	}

	return msg
}

// Kind is the category a Key Vault failure falls into.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Classify maps a vault error to a Kind. Structured *azcore.ResponseError
// values are inspected first; anything else falls back to a case-sensitive
// match on the error text, NotFound taking priority over Forbidden.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound || strings.Contains(respErr.ErrorCode, "NotFound"):
			return KindNotFound
		case respErr.StatusCode == http.StatusForbidden || strings.Contains(respErr.ErrorCode, "Forbidden"):
			return KindForbidden
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "NotFound"):
		return KindNotFound
	case strings.Contains(msg, "Forbidden"):
		return KindForbidden
	default:
		return KindUnknown
	}
}

// Suggestion returns an operator hint for a vault error, used in logs only.
func Suggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "forbidden") || strings.Contains(errStr, "access denied"):
		return "Grant the function's identity 'Get' permission on secrets (access policy or Key Vault Secrets User role)"
	case strings.Contains(errStr, "notfound") || strings.Contains(errStr, "404"):
		return "Verify the secret name exists in the Key Vault. Secret names are case-sensitive"
	case strings.Contains(errStr, "managedidentitycredential") || strings.Contains(errStr, "identity"):
		return "Enable a managed identity on the Function App, or set AZURE_KEYVAULT_MI_CLIENT_ID for a user-assigned one"
	case strings.Contains(errStr, "no such host"):
		return "Check AZURE_KEYVAULT_URL: the vault host could not be resolved"
	case strings.Contains(errStr, "throttled") || strings.Contains(errStr, "429"):
		return "Request was throttled by Key Vault. Reduce the request rate"
	default:
		return "Check the managed identity, AZURE_KEYVAULT_URL and the vault's access policies"
	}
}
