package secure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureString_Use(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "client secret", input: "client-secret-value~123"},
		{name: "empty value", input: ""},
		{name: "unicode", input: "pässwörd-秘密"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSecureString(tt.input)
			defer s.Destroy()

			var got string
			err := s.Use(func(plain []byte) error {
				got = string(plain)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
			assert.Equal(t, tt.input == "", s.IsEmpty())
		})
	}
}

func TestSecureString_UsePropagatesError(t *testing.T) {
	t.Parallel()

	s := NewSecureString("value")
	defer s.Destroy()

	want := errors.New("credential rejected")
	err := s.Use(func([]byte) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestSecureString_Destroy(t *testing.T) {
	t.Parallel()

	s := NewSecureString("value")
	s.Destroy()
	s.Destroy() // idempotent

	called := false
	err := s.Use(func([]byte) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.False(t, called)
	assert.True(t, s.IsEmpty())
}

func TestSecureString_ZeroValue(t *testing.T) {
	t.Parallel()

	var s SecureString
	assert.True(t, s.IsEmpty())
	assert.NoError(t, s.Use(func(plain []byte) error {
		assert.Empty(t, plain)
		return nil
	}))
}

func TestSecureString_Formatting(t *testing.T) {
	t.Parallel()

	s := NewSecureString("do-not-print")
	defer s.Destroy()

	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestSecureString_CopyOutlivesUse(t *testing.T) {
	t.Parallel()

	s := NewSecureString("kept-after-use")
	defer s.Destroy()

	var kept string
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Use(func(plain []byte) error {
			kept = string(plain)
			return nil
		}))
	}

	assert.Equal(t, "kept-after-use", kept)
	assert.False(t, s.IsEmpty())
}
