package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

const DefaultTokenBytes = 32

// GenerateRandomToken returns size bytes from the CSPRNG, base64url encoded
// without padding. Entropy exhaustion is the only error path.
func GenerateRandomToken(size int) (string, error) {
	if size <= 0 {
		size = DefaultTokenBytes
	}
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
