package function

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// SecretResponse is the success envelope
type SecretResponse struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// ErrorResponse is the failure envelope. Error is a short category and
// Message the human-readable detail.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Response is a status code paired with the envelope to serialize
type Response struct {
	Status int
	Body   interface{}
}

// Error categories and fixed messages returned to callers
const (
	CategoryMissingParameter = "Parameter is missing"
	CategoryNotConfigured    = "Not configured properly"
	CategoryNotFound         = "Not found"
	CategoryForbidden        = "Forbidden access"
	CategoryInternal         = "Internal server error"
	CategoryMethodNotAllowed = "Method not allowed"

	MessageMissingParameter = "Query parameter 'key' or it's value is missing"
	MessageNotConfigured    = "Azure Key Vault URL is not configured in Application settings of Azure Cloud"
	MessageForbidden        = "You don't have permission to access or application not configured properly"
	messageNotFoundSuffix   = " not found in the Azure Key Vault"
)

// NotFoundMessage is the message returned when key does not exist in the vault
func NotFoundMessage(key string) string {
	return key + messageNotFoundSuffix
}

func errorResponse(status int, category, message string) Response {
	return Response{Status: status, Body: ErrorResponse{Error: category, Message: message}}
}

// Format serializes payload as UTF-8 JSON. HTML characters are left
// unescaped so secret values round-trip byte for byte.
func Format(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes payload with the given status and an application/json content type.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) error {
	body, err := Format(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = Format(ErrorResponse{Error: CategoryInternal, Message: err.Error()})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, werr := w.Write(body)
	if err != nil {
		return err
	}
	return werr
}
