package config

import (
	"fmt"
	"strings"

	dserrors "github.com/systmms/keyvault-middleware/internal/errors"
	"github.com/xeipuuv/gojsonschema"
)

// fileSchema describes the optional YAML configuration file. The client
// secret is only read from the environment.
const fileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "vault_url": {"type": "string"},
    "port": {"type": "integer", "minimum": 1, "maximum": 65535},
    "use_managed_identity": {"type": "boolean"},
    "managed_identity_client_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "client_id": {"type": "string"},
    "request_timeout": {"type": "string"},
    "debug": {"type": "boolean"},
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "path": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(fileSchema)

func validateSchema(doc map[string]interface{}) error {
	if doc == nil {
		doc = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var messages []string
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return dserrors.ConfigError{
		Message:    "configuration file failed validation:\n  - " + strings.Join(messages, "\n  - "),
		Suggestion: "Supported keys: vault_url, port, use_managed_identity, managed_identity_client_id, tenant_id, client_id, request_timeout, debug, metrics",
	}
}
