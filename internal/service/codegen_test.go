package service

import (
	"strings"
	"testing"
)

func TestGenerateShortCode_Shape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := generateShortCode()
		if err != nil {
			t.Fatalf("generateShortCode failed: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("expected length %d, got %q", codeLength, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(codeAlphabet, ch) {
				t.Fatalf("code %q contains %q outside the alphabet", code, ch)
			}
		}
	}
}

func TestGenerateShortCode_Distribution(t *testing.T) {
	// With a 62^6 space, 1000 draws colliding would indicate a broken
	// random source rather than bad luck.
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := generateShortCode()
		if err != nil {
			t.Fatalf("generateShortCode failed: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}
