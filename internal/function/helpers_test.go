package function_test

import (
	"encoding/json"
	"net/http/httptest"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

type azsecretsResponse = azsecrets.GetSecretResponse

func decode(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
