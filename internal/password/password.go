// Package password provides one-way credential hashing. The same hasher is
// used for user passwords and for refresh tokens at rest, so a leaked
// database row never contains a usable secret.
package password

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns a salted bcrypt hash of the plaintext. The salt and cost
// parameter are embedded in the returned string, so verification keeps
// working after a cost upgrade.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
// Comparison is constant-time inside bcrypt.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// HashToken hashes an opaque token for storage at rest. Tokens exceed
// bcrypt's 72-byte input limit, so they are digested with SHA-256 first.
func HashToken(token string) (string, error) {
	return Hash(digest(token))
}

// VerifyToken reports whether the token matches a hash made by HashToken.
func VerifyToken(token, hash string) bool {
	return Verify(digest(token), hash)
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
