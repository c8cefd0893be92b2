package service

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the alphanumeric alphabet short codes are drawn from
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// codeLength is the fixed length of generated short codes
const codeLength = 6

// generateShortCode returns a random fixed-length alphanumeric short code
func generateShortCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return string(buf), nil
}
