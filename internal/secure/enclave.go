package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned by Use after Destroy has been called.
var ErrDestroyed = errors.New("secure string has been destroyed")

// SecureString holds a sensitive string sealed in a memguard enclave.
// The zero value is an empty, usable SecureString.
type SecureString struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
	// destroyed allows idempotent Destroy calls and rejects use after destroy
	destroyed bool
}

// NewSecureString seals s. memguard returns a nil enclave for empty input,
// which SecureString treats as the empty value.
func NewSecureString(s string) *SecureString {
	if s == "" {
		return &SecureString{}
	}
	return &SecureString{enclave: memguard.NewEnclave([]byte(s))}
}

// IsEmpty reports whether no value is sealed.
func (s *SecureString) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enclave == nil
}

// Use decrypts the value into a locked buffer and passes its bytes to fn.
// The buffer is wiped and unmapped when fn returns, so plain aliases guarded
// memory: fn must copy anything it keeps (string(plain) copies).
func (s *SecureString) Use(fn func(plain []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if s.enclave == nil {
		return fn(nil)
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()

	return fn(locked.Bytes())
}

// Destroy drops the enclave. Safe to call more than once.
func (s *SecureString) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// String never reveals the sealed value.
func (s *SecureString) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s *SecureString) GoString() string {
	return "[REDACTED]"
}

// Purge wipes all memguard state. Call it on process exit.
func Purge() {
	memguard.Purge()
}
