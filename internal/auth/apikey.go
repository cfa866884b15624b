// Package auth issues and checks the opaque API keys that identify callers.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	keyPrefix = "clq_ak_"
	keyBytes  = 32
)

// GenerateAPIKey returns a fresh key. The prefix makes leaked keys easy to
// grep for; everything after it is random.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashAPIKey returns the hex sha256 digest under which a key is stored.
// Only digests ever reach the database.
func HashAPIKey(key string) string {
	digest := sha256.Sum256([]byte(key))
	return hex.EncodeToString(digest[:])
}

// VerifyAPIKey reports whether key hashes to storedHash, in constant time.
func VerifyAPIKey(key, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashAPIKey(key)), []byte(storedHash)) == 1
}

// BearerToken extracts the credential from an Authorization header, or
// returns the empty string when the header is not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
