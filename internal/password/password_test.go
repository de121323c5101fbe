package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superimpress/backend/internal/password"
)

func TestHashAndVerify(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		attempt   string
		want      bool
	}{
		{
			name:      "matching password",
			plaintext: "Secret123!",
			attempt:   "Secret123!",
			want:      true,
		},
		{
			name:      "wrong password",
			plaintext: "Secret123!",
			attempt:   "Secret123?",
			want:      false,
		},
		{
			name:      "empty attempt",
			plaintext: "Secret123!",
			attempt:   "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.plaintext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, password.Verify(tt.attempt, hash))
		})
	}
}

func TestHashIsNotPlaintext(t *testing.T) {
	hash, err := password.Hash("Secret123!")
	require.NoError(t, err)
	assert.NotContains(t, hash, "Secret123!")
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("Secret123!")
	require.NoError(t, err)
	second, err := password.Hash("Secret123!")
	require.NoError(t, err)

	// Each hash embeds a fresh salt
	assert.NotEqual(t, first, second)
	assert.True(t, password.Verify("Secret123!", first))
	assert.True(t, password.Verify("Secret123!", second))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	assert.False(t, password.Verify("Secret123!", "not-a-bcrypt-hash"))
}

func TestHashTokenHandlesLongTokens(t *testing.T) {
	// JWTs are far longer than bcrypt's 72-byte input limit
	long := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 20)

	hash, err := password.HashToken(long)
	require.NoError(t, err)

	assert.True(t, password.VerifyToken(long, hash))
	assert.False(t, password.VerifyToken(long+"x", hash))
}
