package keyvault

import (
	"fmt"
	"net/url"
	"strings"
)

// SecretID is a parsed secret identifier
type SecretID struct {
	// VaultURL is scheme://host/ and is what azsecrets.NewClient expects
	VaultURL string
	Name     string
	Version  string
}

func (id SecretID) String() string {
	s := id.VaultURL + "secrets/" + id.Name
	if id.Version != "" {
		s += "/" + id.Version
	}
	return s
}

// ComposeSecretID appends key to base, adding the separating slash only
// when base does not already end with one.
func ComposeSecretID(base, key string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + key
}

// ParseSecretID splits an identifier into vault URL, secret name and
// optional version. Accepted forms are <vault>/secrets/<name>[/<version>]
// and <vault>/<name>. Any other collection (keys, certificates, ...) is
// rejected rather than read as a secret name.
func ParseSecretID(identifier string) (SecretID, error) {
	u, err := url.Parse(identifier)
	if err != nil {
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: %w", identifier, err)
	}
	if u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: expected an absolute https URL", identifier)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: query and fragment are not allowed", identifier)
	}

	if strings.HasSuffix(u.Path, "/") || strings.Contains(u.Path, "//") {
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: missing secret name", identifier)
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")

	id := SecretID{VaultURL: u.Scheme + "://" + u.Host + "/"}
	switch {
	case len(segments) == 1:
		// <vault>/<name>, including a secret literally named "secrets"
		id.Name = segments[0]
	case segments[0] == "secrets" && len(segments) == 2:
		id.Name = segments[1]
	case segments[0] == "secrets" && len(segments) == 3:
		id.Name, id.Version = segments[1], segments[2]
	default:
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: expected <vault>/secrets/<name>[/<version>] or <vault>/<name>", identifier)
	}
	if id.Name == "" {
		return SecretID{}, fmt.Errorf("invalid secret identifier %q: missing secret name", identifier)
	}
	return id, nil
}
