// Package vigenere encrypts, decrypts and breaks Vigenère ciphers with an
// unknown key length.
package vigenere

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

var (
	// ErrInvalidKeyRange reports unusable key-length bounds.
	ErrInvalidKeyRange = errors.New("invalid key length range")
	// ErrInvalidKey reports a key that is empty or contains non-letters.
	ErrInvalidKey = errors.New("invalid vigenere key")
)

// Key length bounds accepted by the breaker.
const (
	MinKeyLength = 2
	MaxKeyLength = 20
)

// ValidateRange checks key-length bounds before any work is done.
func ValidateRange(minLen, maxLen int) error {
	switch {
	case minLen < MinKeyLength:
		return fmt.Errorf("%w: min key length %d is below %d", ErrInvalidKeyRange, minLen, MinKeyLength)
	case maxLen > MaxKeyLength:
		return fmt.Errorf("%w: max key length %d is above %d", ErrInvalidKeyRange, maxLen, MaxKeyLength)
	case maxLen < minLen:
		return fmt.Errorf("%w: max key length %d is below min %d", ErrInvalidKeyRange, maxLen, minLen)
	}
	return nil
}

// Encrypt applies key to the letters of text. Non-letters pass through and
// do not advance the key; case is preserved.
func Encrypt(text, key string) (string, error) {
	shifts, err := parseKey(key)
	if err != nil {
		return "", err
	}
	return apply(text, shifts, 1), nil
}

// DecryptWithKey reverses Encrypt.
func DecryptWithKey(text, key string) (string, error) {
	shifts, err := parseKey(key)
	if err != nil {
		return "", err
	}
	return apply(text, shifts, -1), nil
}

func parseKey(key string) ([]int, error) {
	shifts, err := alphabet.ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return shifts, nil
}

func apply(text string, shifts []int, sign int) string {
	out := []byte(text)
	pos := 0
	for i, b := range out {
		if !alphabet.IsLetter(b) {
			continue
		}
		out[i] = alphabet.Shift(b, sign*shifts[pos%len(shifts)])
		pos++
	}
	return string(out)
}

// MinimalPeriod returns the shortest prefix of key that repeats to form key.
func MinimalPeriod(key []int) []int {
	n := len(key)
	for p := 1; p < n; p++ {
		if n%p != 0 {
			continue
		}
		repeats := true
		for i := p; i < n; i++ {
			if key[i] != key[i-p] {
				repeats = false
				break
			}
		}
		if repeats {
			return key[:p]
		}
	}
	return key
}
